package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/summitair/inventory-service/api"
	"github.com/summitair/inventory-service/config"
)

func TestGetEnvironment(t *testing.T) {
	cfg := config.LoadDefaults()
	cfg.Db.Pass = "supersecret"

	envApi := api.NewEnvApi(cfg)
	r := chi.NewRouter()
	envApi.ConfigureRouter(r)

	ts := httptest.NewServer(r)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}

	got := &config.Config{}
	unmarshal(res, got, t)

	if got.AppName != cfg.AppName {
		t.Errorf("unexpected app name got=[%v] want=[%v]", got.AppName, cfg.AppName)
	}
	if got.Db.Pass != "******" {
		t.Errorf("expected db password to be scrubbed, got=[%v]", got.Db.Pass)
	}
}
