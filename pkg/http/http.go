package http

import "time"

// Http holds the listener settings of the fiber app.
type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	ExposeMetrics   bool
	BodyLimit       int // bytes, 0 means 4MB
	ReadTimeout     int // seconds
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
}

// SetDefaults 返回默认监听配置
func SetDefaults() Http {
	return Http{
		Host:            "0.0.0.0",
		Port:            8080,
		AccessLog:       true,
		ExposeMetrics:   true,
		ReadTimeout:     30,
		WriteTimeout:    30,
		IdleTimeout:     60,
		ShutdownTimeout: 10,
	}
}

func (h Http) ShutdownWait() time.Duration {
	if h.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(h.ShutdownTimeout) * time.Second
}
