package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/wikiviews/pkg/configs"
	"github.com/yeisme/wikiviews/pkg/internal/wikimedia"
)

const noConfigFile = "no config file used (defaults and WIKIVIEWS_* env only)"

// upstreamReport 解析后的上游访问设置.
type upstreamReport struct {
	BaseURL          string  `json:"base_url"`
	UserAgent        string  `json:"user_agent"`
	ForwardUserAgent bool    `json:"forward_user_agent"`
	Timeout          string  `json:"timeout"`
	Concurrency      int     `json:"concurrency"`
	MaxArticles      int     `json:"max_articles"`
	Breaker          breaker `json:"circuit_breaker"`
}

type breaker struct {
	State       string  `json:"state"`
	FailureRate float64 `json:"failure_rate,omitempty"`
	MinRequests uint32  `json:"min_requests,omitempty"`
	Interval    string  `json:"interval,omitempty"`
	OpenFor     string  `json:"open_for,omitempty"`
	HalfOpenMax uint32  `json:"max_requests_in_half,omitempty"`
}

type configReport struct {
	ConfigFile string             `json:"config_file"`
	Upstream   upstreamReport     `json:"upstream"`
	Config     *configs.AppConfig `json:"config"`
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "inspect the loaded configuration",
	}

	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configFileUsed())

			return nil
		},
	}

	// --debug 时额外把 viper 的键值输出到 stderr.
	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the resolved upstream settings and the full config as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := configs.GetViper()
			if v == nil {
				return errors.New("config not initialized")
			}

			if debug {
				v.DebugTo(cmd.ErrOrStderr())
			}

			c := configs.GetConfig()

			return printJSON(cmd, configReport{
				ConfigFile: configFileUsed(),
				Upstream:   reportUpstream(c.Upstream),
				Config:     c,
			})
		},
	}
)

func configFileUsed() string {
	v := configs.GetViper()
	if v == nil || v.ConfigFileUsed() == "" {
		return noConfigFile
	}

	return v.ConfigFileUsed()
}

// reportUpstream 按 wikimedia.Client 的实际取值汇总上游设置.
func reportUpstream(cfg configs.UpstreamConfig) upstreamReport {
	r := upstreamReport{
		BaseURL:          cfg.GetBaseURL(),
		UserAgent:        cfg.UserAgent,
		ForwardUserAgent: cfg.ForwardUserAgent,
		Timeout:          cfg.GetTimeoutDuration().String(),
		Concurrency:      cfg.Concurrency,
		MaxArticles:      cfg.MaxArticles,
		Breaker:          breaker{State: wikimedia.New(cfg).State()},
	}

	if cb := cfg.CircuitBreaker; cb.Enabled {
		r.Breaker.FailureRate = cb.FailureRate
		r.Breaker.MinRequests = cb.MinRequests
		r.Breaker.Interval = cb.GetInterval().String()
		r.Breaker.OpenFor = cb.GetTimeout().String()
		r.Breaker.HalfOpenMax = cb.MaxRequestsInHalf
	}

	return r
}

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd)
	configCmd.AddCommand(debugCmd)

	rootCmd.AddCommand(configCmd)
}
