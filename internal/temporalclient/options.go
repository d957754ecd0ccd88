// Package temporalclient loads Temporal client options through the SDK's
// envconfig contrib package, so the worker and the clients share one
// configuration surface (TEMPORAL_HOST_URL, TEMPORAL_NAMESPACE, TLS vars,
// or a config.toml pointed to by TEMPORAL_CONFIG_FILE).
package temporalclient

import (
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/contrib/envconfig"
)

// DefaultTaskQueue is the task queue the worker and clients use unless
// overridden by a flag.
const DefaultTaskQueue = "agentloop"

// LoadClientOptions resolves client options from the environment and
// optional config file. Non-empty overrides win over the resolved values.
func LoadClientOptions(hostPortOverride, namespaceOverride string) (client.Options, error) {
	opts, err := envconfig.LoadClientOptions(envconfig.LoadClientOptionsRequest{})
	if err != nil {
		return client.Options{}, err
	}

	if hostPortOverride != "" {
		opts.HostPort = hostPortOverride
	}
	if namespaceOverride != "" {
		opts.Namespace = namespaceOverride
	}
	return opts, nil
}

// MustLoadClientOptions is like LoadClientOptions but panics on error.
// Used by the binaries where a bad connection config is fatal anyway.
func MustLoadClientOptions(hostPortOverride, namespaceOverride string) client.Options {
	opts, err := LoadClientOptions(hostPortOverride, namespaceOverride)
	if err != nil {
		panic("failed to load Temporal client options: " + err.Error())
	}
	return opts
}
