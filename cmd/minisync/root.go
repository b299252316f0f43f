// ABOUTME: Root Cobra command and global flags
// ABOUTME: Wires config, status store, queues, API client, and the dispatcher

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlgusDark/minisync/internal/api"
	"github.com/AlgusDark/minisync/internal/bus"
	"github.com/AlgusDark/minisync/internal/cache"
	"github.com/AlgusDark/minisync/internal/config"
	"github.com/AlgusDark/minisync/internal/coordinator"
	"github.com/AlgusDark/minisync/internal/dispatch"
	"github.com/AlgusDark/minisync/internal/netcheck"
	"github.com/AlgusDark/minisync/internal/notify"
	"github.com/AlgusDark/minisync/internal/queue"
	"github.com/AlgusDark/minisync/internal/store"
)

var (
	configPath string
	dataDir    string
	verbose    bool

	cfg           *config.Config
	statusStore   *store.Store
	entryQueue    *queue.Queue[queue.StatusOp]
	feedQueue     *queue.Queue[queue.CollectionOp]
	categoryQueue *queue.Queue[queue.CollectionOp]
	client        *api.Client
	probe         netcheck.Probe
	eventBus      *bus.Bus
	dispatcher    *dispatch.Dispatcher
	coord         *coordinator.Coordinator
	unreadCache   *cache.Counts
)

var rootCmd = &cobra.Command{
	Use:   "minisync",
	Short: "Offline-first read/unread sync for Miniflux",
	Long: `minisync keeps local read/unread state for Miniflux entries and
reconciles it with the server when a connection is available.

Status changes apply locally first and are pushed in the background.
When the server is unreachable, changes land in a durable queue and
are replayed in batches on the next sync.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		statusStore, err = store.New(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("failed to open status store: %w", err)
		}

		entryQueue = queue.New[queue.StatusOp](cfg.EntryQueuePath())
		feedQueue = queue.New[queue.CollectionOp](cfg.FeedQueuePath())
		categoryQueue = queue.New[queue.CollectionOp](cfg.CategoryQueuePath())

		client = api.NewClient(cfg.ServerAddress, cfg.APIToken, cfg.RequestTimeout())
		probe = netcheck.NewHTTPProbe(cfg.ServerAddress, config.ProbeTimeout)
		eventBus = bus.New()

		dispatcher = dispatch.New(dispatch.Config{
			Store:         statusStore,
			EntryQueue:    entryQueue,
			FeedQueue:     feedQueue,
			CategoryQueue: categoryQueue,
			Remote:        client,
			Probe:         probe,
			Bus:           eventBus,
			Notifier:      notify.Console{},
			CallTimeout:   cfg.RequestTimeout(),
		})
		coord = coordinator.New(entryQueue, feedQueue, categoryQueue, client, eventBus, cfg.BatchLimit)
		unreadCache = cache.New(statusStore, eventBus)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Wait for in-flight background workers before the process exits,
		// so a triggered remote call gets its chance to finish or heal.
		if dispatcher != nil {
			dispatcher.Close()
		}
		if unreadCache != nil {
			unreadCache.Close()
		}
		if eventBus != nil {
			eventBus.Close()
		}
		if statusStore != nil {
			if err := statusStore.Close(); err != nil {
				return fmt.Errorf("failed to close status store: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/minisync/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.local/share/minisync)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
