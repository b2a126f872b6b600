package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/loomrun/loom/pkg/cache"
	"github.com/loomrun/loom/pkg/compiler"
	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/engine"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/telemetry"
	"github.com/loomrun/loom/pkg/template"
	"github.com/loomrun/loom/pkg/trace"
)

// templatePolicy maps the spec's environment-level template resolution
// mode onto the compiler's Policy, so TEMPLATE_RESOLUTION_MODE actually
// affects a real run instead of only ever taking the compiler's default.
func templatePolicy(mode config.TemplateResolutionMode) template.Policy {
	if mode == config.TemplateModePermissive {
		return template.PolicyPermissive
	}
	return template.PolicyStrict
}

func newRunCommand() *cobra.Command {
	var inputFlags []string
	var debugDir string
	var cachePath string
	var noCache bool
	var writeDebugMarkdown bool
	var otlpEndpoint string
	var toolsConfig string
	var toolsCache string

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a workflow, writing a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseInputs(inputFlags)
			if err != nil {
				return err
			}

			cfg, err := resolveProfile()
			if err != nil {
				return err
			}
			env := config.LoadRuntimeEnv()
			log := rootLogger()

			reg, err := buildRegistry(cfg, env, log)
			if err != nil {
				return err
			}
			if toolsConfig != "" {
				if err := registerToolServers(context.Background(), reg, toolsConfig, toolsCache, cfg.HTTPTimeout); err != nil {
					return err
				}
			}

			wf, err := loadWorkflow(args[0], registry.NewIRResolver(reg))
			if err != nil {
				return err
			}

			var compileOpts []compiler.Option
			var db *cache.DB
			if !noCache {
				db, err = cache.Open(cachePath)
				if err != nil {
					return fmt.Errorf("opening iteration cache: %w", err)
				}
				defer db.Close()

				scoped, err := db.Scope(wf.Name)
				if err != nil {
					return fmt.Errorf("scoping iteration cache to %q: %w", wf.Name, err)
				}
				compileOpts = append(compileOpts, compiler.WithCache(scoped))
			}

			collector := trace.NewCollector(trace.Limits{
				PromptMax:   env.PromptMax,
				ResponseMax: env.ResponseMax,
				StoreMax:    env.StoreMax,
				DictMax:     env.DictMax,
				LLMCallsMax: env.LLMCallsMax,
			})
			compileOpts = append(compileOpts, compiler.WithSink(collector), compiler.WithPolicy(templatePolicy(env.TemplateMode)))

			eng := engine.New(reg, engine.WithDeadline(cfg.MaxExecutionTime), engine.WithLogger(log))
			result, shared, runErr := eng.Run(context.Background(), wf, inputs, compileOpts...)

			record := trace.FinalizeFromEngine(collector, wf, result, shared)
			tracePath, writeErr := trace.WriteJSON(debugDir, record)
			if writeErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "loom: writing trace file:", writeErr)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "trace written to", tracePath)
			}
			if writeDebugMarkdown {
				if mdPath, err := trace.WriteSmartDebugMarkdown(debugDir, record); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "loom: writing debug markdown:", err)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "debug markdown written to", mdPath)
				}
			}

			if otlpEndpoint != "" {
				if err := pushTelemetry(context.Background(), otlpEndpoint, record); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "loom: pushing telemetry:", err)
				}
			}

			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "status: %s (visited %d nodes, last action %q)\n",
				result.Status, len(result.VisitedNodes), result.LastAction)
			for _, path := range wf.Outputs {
				if v, ok := result.Outputs[path]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "output %s: %v\n", path, v)
				}
			}
			if result.Status == engine.StatusFailed {
				return fmt.Errorf("workflow %q failed", wf.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&inputFlags, "set", nil, "workflow input in key=value form, repeatable")
	cmd.Flags().StringVar(&debugDir, "debug-dir", ".loom/debug", "directory trace (and optional debug markdown) files are written to")
	cmd.Flags().StringVar(&cachePath, "cache", cache.DefaultPath, "iteration cache database path")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the iteration cache for this run")
	cmd.Flags().BoolVar(&writeDebugMarkdown, "debug-markdown", false, "also write a derived smart-debug Markdown file")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "push workflow/node execution spans to this OTLP/HTTP collector after the run (e.g. localhost:4318)")
	cmd.Flags().StringVar(&toolsConfig, "tools", "", "path to a JSON array of tool server configs to discover and register before running")
	cmd.Flags().StringVar(&toolsCache, "tools-cache", ".loom/tools-cache.json", "path to the tool discovery cache")

	return cmd
}

// pushTelemetry opens a short-lived OTLP telemetry.Provider, replays rec's
// already-collected node events through it as spans, and shuts it down so
// the batch exporter flushes before the process exits. The provider's
// metric instruments sit behind a Prometheus pull registry that nothing
// would ever scrape in a one-shot command, so run reports through the
// tracer instead, whose OTLP exporter is push-based and built for exactly
// this "emit, then exit" shape; RecordWorkflowExecution/RecordNodeExecution
// are still called too, so a collector that does scrape this process
// between calls sees the counters either way.
func pushTelemetry(ctx context.Context, endpoint string, rec *trace.Record) error {
	cfg := telemetry.DefaultConfig()
	cfg.MetricsExporter = telemetry.ExporterOTLP
	cfg.OTLPEndpoint = endpoint

	provider, err := telemetry.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("starting telemetry provider: %w", err)
	}
	defer provider.Shutdown(ctx)

	success := rec.Status == "success" || rec.Status == "degraded"
	provider.RecordWorkflowExecution(ctx, rec.WorkflowName, time.Duration(rec.DurationMS)*time.Millisecond, success, len(rec.Nodes))

	start := rec.StartedAt
	spanCtx, root := provider.Tracer().Start(ctx, "workflow."+rec.WorkflowName, oteltrace.WithTimestamp(start))
	for _, n := range rec.Nodes {
		provider.RecordNodeExecution(ctx, n.NodeID, n.NodeType, n.Action, time.Duration(n.DurationMS)*time.Millisecond, n.Success)

		end := start.Add(time.Duration(n.DurationMS) * time.Millisecond)
		_, span := provider.Tracer().Start(spanCtx, "node."+n.NodeType,
			oteltrace.WithTimestamp(start),
			oteltrace.WithAttributes(
				attribute.String("node.id", n.NodeID),
				attribute.String("node.action", n.Action),
			))
		span.End(oteltrace.WithTimestamp(end))
		start = end
	}
	root.End(oteltrace.WithTimestamp(rec.StartedAt.Add(time.Duration(rec.DurationMS) * time.Millisecond)))
	return nil
}

func parseInputs(flags []string) (map[string]any, error) {
	inputs := make(map[string]any, len(flags))
	for _, kv := range flags {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		inputs[key] = value
	}
	return inputs, nil
}
