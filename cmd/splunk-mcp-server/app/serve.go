package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/discovery"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/mcpserver"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/session"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/workflow"

	// imported for its init() side effects, which populate the
	// discovery builtin tables the component manifests resolve against.
	_ "github.com/hkgnobody/mcp-for-splunk-sub002/internal/coretools"
	"github.com/hkgnobody/mcp-for-splunk-sub002/internal/workflows"
)

const serverName = "splunk-mcp-server"

// serverVersion is overridden at build time via -ldflags, the way the
// teacher stamps its own binaries; left as a literal default here since
// there is no release pipeline driving this repo yet.
var serverVersion = "dev"

func newServeCommand() *cobra.Command {
	var examplesDir string
	var contribDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Splunk MCP server",
		Long: `Start the MCP server: load tool, resource, prompt and workflow
manifests from disk, bind them onto an MCP surface, and serve it over
stdio or streamable HTTP depending on MCP_TRANSPORT.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), examplesDir, contribDir)
		},
	}

	cmd.Flags().StringVar(&examplesDir, "examples-dir", "examples", "directory holding core component and workflow manifests")
	cmd.Flags().StringVar(&contribDir, "contrib-dir", "", "optional directory holding contrib component and workflow manifests")

	return cmd
}

func runServe(ctx context.Context, examplesDir, contribDir string) error {
	settings := config.LoadServerSettings()
	if contribDir == "" {
		contribDir = settings.ContribRootDir
	}

	reg := registry.New()

	roots := workflows.CoreRoots(examplesDir)
	if contribDir != "" {
		roots = append(roots, workflows.ContribRoots(contribDir)...)
	}
	report := discovery.Load(roots, reg, nil)
	discovery.SetLastReport(report)
	logger.Infow("component discovery complete",
		"files_seen", report.FilesSeen,
		"by_kind", report.ByKind,
		"by_origin", report.ByOrigin,
		"failures", len(report.Failures),
	)
	for _, f := range report.Failures {
		logger.Warnf("discovery: %s: %s", f.Path, f.Reason)
	}

	pool := session.NewPool()
	defer pool.Close()

	var summarizer workflow.Summarizer = workflow.TemplateSummarizer{}
	if openAISummarizer, ok := workflow.NewOpenAISummarizerFromEnv(); ok {
		summarizer = openAISummarizer
	}
	engine := workflow.NewEngine(workflow.WithSummarizer(summarizer))

	dispatcher := &mcpserver.Dispatcher{Registry: reg, Pool: pool, Workflow: engine}
	binder := mcpserver.NewBinder(serverName, serverVersion, dispatcher)

	switch settings.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, binder, settings)
	default:
		logger.Infof("serving %s over stdio", serverName)
		return mcpserver.ServeStdio(ctx, binder)
	}
}

func serveHTTP(_ context.Context, binder *mcpserver.Binder, settings config.ServerSettings) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	router := chi.NewRouter()
	mcpserver.Mount(router, "/mcp", binder)

	addr := fmt.Sprintf("%s:%d", settings.HTTPHost, settings.HTTPPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("serving %s on http://%s/mcp", serverName, addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-sigChan:
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
