package main

import (
	"fmt"
	"os"

	"github.com/balusreekanth/LogCast/version"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Print(version.String())
	}

	app := &cli.App{
		Name:    version.NAME,
		Usage:   "Tail a log file and push keyword alerts to TLS subscribers",
		Version: version.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "/etc/logcast/logcast.yaml",
				Usage:   "config file path, in yaml, ignored when missing",
				EnvVars: []string{"LOGCAST_CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "INFO",
				Usage:   "set log level",
				EnvVars: []string{"LOGCAST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "addr",
				Value:   "",
				Usage:   "address to listen on for subscribers",
				EnvVars: []string{"SERVER_IP"},
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "port to listen on for subscribers",
				EnvVars: []string{"SERVER_PORT"},
			},
			&cli.StringFlag{
				Name:    "cert-file",
				Value:   "",
				Usage:   "tls certificate",
				EnvVars: []string{"CERT_FILE"},
			},
			&cli.StringFlag{
				Name:    "key-file",
				Value:   "",
				Usage:   "tls private key",
				EnvVars: []string{"KEY_FILE"},
			},
			&cli.StringFlag{
				Name:    "framing",
				Value:   "",
				Usage:   "message framing on the wire, line or raw",
				EnvVars: []string{"LOGCAST_FRAMING"},
			},
			&cli.StringFlag{
				Name:    "watch",
				Value:   "",
				Usage:   "log file to watch",
				EnvVars: []string{"LOG_FILE_TO_WATCH"},
			},
			&cli.StringFlag{
				Name:    "keyword",
				Value:   "",
				Usage:   "keyword that triggers an alert, case sensitive",
				EnvVars: []string{"LOG_KEYWORD"},
			},
			&cli.IntFlag{
				Name:    "poll-interval",
				Usage:   "seconds between checks of the watched file",
				EnvVars: []string{"MONITOR_POLL_INTERVAL"},
			},
			&cli.IntFlag{
				Name:    "heartbeat-interval",
				Usage:   "seconds between keep-alive messages",
				EnvVars: []string{"KEEP_ALIVE_INTERVAL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Value:   "",
				Usage:   "diagnostic log file",
				EnvVars: []string{"LOG_FILE_PATH"},
			},
			&cli.StringFlag{
				Name:    "log-stdout",
				Value:   "",
				Usage:   "mirror diagnostic log to stdout? yes/no",
				EnvVars: []string{"LOGCAST_LOG_STDOUT"},
			},
			&cli.StringSliceFlag{
				Name:    "log-forwards",
				Value:   &cli.StringSlice{},
				Usage:   "alert destinations, tcp://, udp:// or journal://",
				EnvVars: []string{"LOGCAST_LOG_FORWARDS"},
			},
			&cli.Int64Flag{
				Name:    "metrics-step",
				Value:   0,
				Usage:   "interval for metrics to send",
				EnvVars: []string{"LOGCAST_METRICS_STEP"},
			},
			&cli.StringSliceFlag{
				Name:    "metrics-transfers",
				Value:   &cli.StringSlice{},
				Usage:   "statsd destinations",
				EnvVars: []string{"LOGCAST_METRICS_TRANSFERS"},
			},
			&cli.StringFlag{
				Name:    "api-addr",
				Value:   "",
				Usage:   "status api serving address",
				EnvVars: []string{"LOGCAST_API_ADDR"},
			},
			&cli.StringFlag{
				Name:    "pidfile",
				Value:   "",
				Usage:   "pidfile to save",
				EnvVars: []string{"LOGCAST_PIDFILE"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Value:   "",
				Usage:   "change hostname",
				EnvVars: []string{"LOGCAST_HOSTNAME"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:  "subscribe",
				Usage: "connect to a logcast server and print every alert",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Value:   "127.0.0.1:7777",
						Usage:   "logcast server host:port",
						EnvVars: []string{"LOGCAST_SERVER"},
					},
					&cli.StringFlag{
						Name:    "ca",
						Value:   "",
						Usage:   "certificate to trust, usually the server's own",
						EnvVars: []string{"CERT_FILE"},
					},
					&cli.BoolFlag{
						Name:  "insecure",
						Value: false,
						Usage: "skip server certificate verification",
					},
					&cli.StringFlag{
						Name:  "framing",
						Value: "line",
						Usage: "framing used by the server, line or raw",
					},
				},
				Action: subscribe,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Errorf("Error running logcast: %v", err)
		os.Exit(1)
	}
}
