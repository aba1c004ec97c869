package config

import "errors"

// APIConfig enables the HTTP API of the serve command. An empty Addr
// disables it. A JWTSecret makes the API require signed bearer tokens
// instead of the static Token. KPIPath keeps the supplier KPIs in a SQLite
// database instead of memory.
type APIConfig struct {
	Addr        string `json:"addr"`
	Token       string `json:"token"`
	JWTSecret   string `json:"jwt_secret"`
	HistorySize int    `json:"history_size"`
	KPIPath     string `json:"kpi_path"`
}

func (c *APIConfig) SetDefaults() {
	if c.HistorySize <= 0 {
		c.HistorySize = 100
	}
}

func (c APIConfig) Validate() error {
	if c.HistorySize < 0 {
		return errors.New("history_size must not be negative")
	}
	return nil
}
