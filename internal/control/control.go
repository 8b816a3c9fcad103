package control

import "time"

type Request struct {
	Op string `json:"op"`
}

type Status struct {
	Running   bool    `json:"running"`
	UptimeSec float64 `json:"uptime_sec"`
	Mode      string  `json:"mode"` // disabled, module-append, html-tag
	Addr      string  `json:"addr"`
	Jumps     []Jump  `json:"jumps"`
}

type SimpleResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Jump records one open-in-editor request handled by the daemon.
type Jump struct {
	File      string    `json:"file"`
	Row       string    `json:"row"`
	Timestamp time.Time `json:"timestamp"`
}
