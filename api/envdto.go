package api

import (
	"net/http"

	"github.com/summitair/inventory-service/config"
)

type EnvResponse struct {
	config.Config
}

func NewEnvResponse(c config.Config) *EnvResponse {
	resp := &EnvResponse{Config: c}
	return resp
}

func (er *EnvResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	Scrub(er)

	return nil
}
