package config

type ClientConfig struct {
	Endpoints ServiceEndpoints
	Reconnect ReconnectConfig
	HTTP      HTTPConfig
	Log       LogConfig
}

func LoadClient() (ClientConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return ClientConfig{}, err
	}
	endpoints, err := ResolveEndpoints()
	if err != nil {
		return ClientConfig{}, err
	}
	reconnectCfg, err := LoadReconnect()
	if err != nil {
		return ClientConfig{}, err
	}
	httpCfg, err := LoadHTTP()
	if err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{
		Endpoints: endpoints,
		Reconnect: reconnectCfg,
		HTTP:      httpCfg,
		Log:       logCfg,
	}, nil
}
