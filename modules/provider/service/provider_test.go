package service

import (
	"testing"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/errors"
)

func TestResolveReusesInstanceWhileConfigUnchanged(t *testing.T) {
	cfg := &config.Config{}
	cfg.Provider.Kind = "graph"
	cfg.Provider.Graph = config.GraphConfig{TenantID: "tenant", ClientID: "client", ClientSecret: "secret"}
	config.Set(cfg)

	f := NewFactory(cache.Noop())

	first, appErr := f.Resolve()
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	second, appErr := f.Resolve()
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if first != second {
		t.Fatal("unchanged config should resolve to the same instance")
	}

	changed := *cfg
	changed.Provider.Graph.ClientSecret = "rotated"
	config.Set(&changed)
	third, appErr := f.Resolve()
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if third == first {
		t.Fatal("changed credentials should rebuild the provider")
	}
}

func TestResolveSwitchesProviderKind(t *testing.T) {
	cfg := &config.Config{}
	cfg.Provider.Kind = "graph"
	config.Set(cfg)

	f := NewFactory(cache.Noop())
	prov, appErr := f.Resolve()
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if _, ok := prov.(*GraphService); !ok {
		t.Fatalf("kind graph resolved to %T", prov)
	}

	ewsCfg := *cfg
	ewsCfg.Provider.Kind = "ews"
	ewsCfg.Provider.EWS = config.EWSConfig{URL: "https://exchange.local/EWS/Exchange.asmx", Username: "svc", Password: "pw"}
	config.Set(&ewsCfg)
	prov, appErr = f.Resolve()
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if _, ok := prov.(*EWSService); !ok {
		t.Fatalf("kind ews resolved to %T", prov)
	}

	badCfg := *cfg
	badCfg.Provider.Kind = "caldav"
	config.Set(&badCfg)
	if _, appErr = f.Resolve(); appErr == nil || appErr.Code != errors.ErrInternalServer {
		t.Fatalf("unknown kind: expected %s, got %v", errors.ErrInternalServer, appErr)
	}
}
