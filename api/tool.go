package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// JSON .
type JSON map[string]interface{}

// JSONWrapper turns a (code, body) handler into an http handler
func JSONWrapper(f func(*Request) (int, interface{})) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		r := NewRequest(req)
		w.Header().Set("Content-Type", "application/json")
		code, result := f(r)
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Errorf("[api] encode response of %s failed: %v", req.URL.Path, err)
		}
	}
}
