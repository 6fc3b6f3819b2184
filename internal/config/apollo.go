package config

import (
	"strconv"

	agollo "github.com/apolloconfig/agollo/v4"
	apconf "github.com/apolloconfig/agollo/v4/env/config"
	"github.com/apolloconfig/agollo/v4/storage"
)

// overrideFromApollo starts the Apollo client and overrides config values if
// present. Returns a closer to stop the Apollo client.
func overrideFromApollo(cfg *Config, store *Store) (func(), error) {
	if cfg.Apollo.Addrs == "" || cfg.Apollo.AppID == "" {
		configLogger.Sugar().Info("apollo: missing APOLLO_ADDRS or APOLLO_APP_ID; skip")
		return nil, nil
	}

	ns := cfg.Apollo.Namespace
	if ns == "" {
		ns = "application"
	}

	appCfg := &apconf.AppConfig{
		AppID:              cfg.Apollo.AppID,
		Cluster:            cfg.Apollo.Cluster,
		NamespaceName:      ns,
		IP:                 cfg.Apollo.Addrs,
		Secret:             cfg.Apollo.AccessKey,
	}

	client, err := agollo.StartWithConfig(func() (*apconf.AppConfig, error) { return appCfg, nil })
	if err != nil {
		return nil, err
	}

	applyApolloOverrides(client, ns, cfg)
	_ = store.UpdateValidated(cfg, map[string]bool{"apollo.init": true})

	client.AddChangeListener(&changeListener{ns: ns, client: client, store: store})

	closer := func() {
		// agollo v4 exposes no Stop; nothing to do here.
	}
	return closer, nil
}

func applyApolloOverrides(client agollo.Client, namespace string, cfg *Config) {
	cache := client.GetConfigCache(namespace)
	if cache == nil {
		return
	}
	getStr := func(key string, dst *string) {
		if v, err := cache.Get(key); err == nil {
			if s, _ := v.(string); s != "" {
				*dst = s
			}
		}
	}
	getInt := func(key string, dst *int) {
		if v, err := cache.Get(key); err == nil {
			if s, _ := v.(string); s != "" {
				if n, err := strconv.Atoi(s); err == nil {
					*dst = n
				}
			}
		}
	}

	getStr("app.env", &cfg.AppEnv)
	getStr("server.addr", &cfg.Server.Addr)
	getStr("log.level", &cfg.Log.Level)
	getStr("log.format", &cfg.Log.Format)
	getStr("db.url", &cfg.DB.URL)
	getInt("db.max_open", &cfg.DB.MaxOpenConns)
	getInt("db.max_idle", &cfg.DB.MaxIdleConns)
	getStr("data.dir", &cfg.Data.Dir)
	getStr("redis.addr", &cfg.Redis.Addr)
	getStr("redis.password", &cfg.Redis.Password)
	getInt("redis.db", &cfg.Redis.DB)
	getStr("mq.url", &cfg.MQ.URL)
	getStr("mq.exchange", &cfg.MQ.Exchange)
	getStr("es.addrs", &cfg.ES.Addrs)
	getStr("es.username", &cfg.ES.Username)
	getStr("es.password", &cfg.ES.Password)
}

type changeListener struct {
	ns     string
	client agollo.Client
	store  *Store
}

func (c *changeListener) OnChange(e *storage.ChangeEvent) {
	configLogger.Sugar().Infof("apollo change: namespace=%s, changes=%d", e.Namespace, len(e.Changes))
	cur := c.store.Get()
	next := cloneConfig(cur)
	applyApolloOverrides(c.client, c.ns, next)
	changed := map[string]bool{}
	for k := range e.Changes {
		changed[k] = true
	}
	if !c.store.UpdateValidated(next, changed) {
		configLogger.Sugar().Warn("apollo change rejected by validator; keeping current config")
	}
}

func (c *changeListener) OnNewestChange(_ *storage.FullChangeEvent) {}
