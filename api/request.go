package api

import (
	"net/http"

	"github.com/balusreekanth/LogCast/utils"

	log "github.com/sirupsen/logrus"
)

// Request carries the paging parameters of list endpoints
type Request struct {
	*http.Request
	Start int
	Limit int
}

// Init .
func (r *Request) Init() {
	r.Start = utils.Atoi(r.URL.Query().Get("start"), 0)
	r.Limit = utils.Atoi(r.URL.Query().Get("limit"), 100)
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Limit <= 0 {
		r.Limit = 100
	}
}

// NewRequest .
func NewRequest(r *http.Request) *Request {
	req := &Request{Request: r}
	req.Init()
	log.Debugf("[api] HTTP request %s %s", req.Method, req.URL.Path)
	return req
}
