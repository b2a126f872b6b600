package config

import (
	"strings"

	"github.com/spf13/viper"
)

// TemplateResolutionMode selects how the template engine treats an
// unresolved reference: "strict" fails the node, "permissive" substitutes
// an empty value and records a warning.
type TemplateResolutionMode string

const (
	TemplateModeStrict     TemplateResolutionMode = "strict"
	TemplateModePermissive TemplateResolutionMode = "permissive"
)

// RuntimeEnv holds the environment-variable surface spec.md §6 names,
// loaded once at startup and threaded through to the packages that need
// it (pkg/trace truncation limits, internal/nodes/shellnode's strict
// mode, pkg/template's resolution mode, pkg/registry's test-node filter).
// The teacher's Config has no loader at all — every field here is new,
// using viper the way the evalgo example's stack does, rather than a
// dozen hand-rolled os.Getenv/strconv.Atoi call sites.
type RuntimeEnv struct {
	PromptMax     int
	ResponseMax   int
	StoreMax      int
	DictMax       int
	LLMCallsMax   int
	ShellStrict   bool
	TemplateMode  TemplateResolutionMode
	IncludeTestNodes bool
}

// LoadRuntimeEnv reads the environment surface via viper, applying the
// defaults spec.md's trace truncation and template-resolution sections
// imply when a variable is unset.
func LoadRuntimeEnv() *RuntimeEnv {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("prompt_max", 4000)
	v.SetDefault("response_max", 4000)
	v.SetDefault("store_max", 8000)
	v.SetDefault("dict_max", 50)
	v.SetDefault("llm_calls_max", 20)
	v.SetDefault("shell_strict", false)
	v.SetDefault("template_resolution_mode", string(TemplateModeStrict))
	v.SetDefault("include_test_nodes", false)

	mode := TemplateResolutionMode(strings.ToLower(v.GetString("template_resolution_mode")))
	if mode != TemplateModePermissive {
		mode = TemplateModeStrict
	}

	return &RuntimeEnv{
		PromptMax:        v.GetInt("prompt_max"),
		ResponseMax:      v.GetInt("response_max"),
		StoreMax:         v.GetInt("store_max"),
		DictMax:          v.GetInt("dict_max"),
		LLMCallsMax:      v.GetInt("llm_calls_max"),
		ShellStrict:      v.GetBool("shell_strict"),
		TemplateMode:     mode,
		IncludeTestNodes: v.GetBool("include_test_nodes"),
	}
}

// LoadFile merges a YAML config file into cfg's engine limits, for
// deployments that prefer a file over the Allow*/Max* defaults.
func LoadFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if v.IsSet("http_timeout") {
		cfg.HTTPTimeout = v.GetDuration("http_timeout")
	}
	if v.IsSet("max_http_redirects") {
		cfg.MaxHTTPRedirects = v.GetInt("max_http_redirects")
	}
	if v.IsSet("max_response_size") {
		cfg.MaxResponseSize = v.GetInt64("max_response_size")
	}
	if v.IsSet("allow_http") {
		cfg.AllowHTTP = v.GetBool("allow_http")
	}
	if v.IsSet("allowed_domains") {
		cfg.AllowedDomains = v.GetStringSlice("allowed_domains")
	}
	if v.IsSet("max_execution_time") {
		cfg.MaxExecutionTime = v.GetDuration("max_execution_time")
	}
	if v.IsSet("default_backoff") {
		cfg.DefaultBackoff = v.GetDuration("default_backoff")
	}
	return nil
}
