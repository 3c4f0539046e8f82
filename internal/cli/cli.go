package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/pkg/buildinfo"
	"github.com/matzehuels/tanglestat/pkg/cache"
	"github.com/matzehuels/tanglestat/pkg/config"
	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/observability"
	"github.com/matzehuels/tanglestat/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "tanglestat"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	noCache    bool
	status     status // spinners and outcome lines, alongside the logs
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		status: status{w: w},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tanglestat analyzes tangle ledgers",
		Long: `Tanglestat loads a tangle ledger description, checks that it forms a valid
DAG rooted at the origin transaction, and reports its structure: depths,
tips, approvals per transaction, breadth per depth level and bipartiteness.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the report cache")

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.depthsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads .env and the config file, wires log hooks and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotenv(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid environment file")
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	c.Config = cfg

	observability.SetAll(observability.NewLogHooks(c.Logger))

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), ns)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if c.Config.Cache.TTL > 0 {
		r.TTL = c.Config.Cache.TTL
	}
	return r, nil
}

// newCache opens the backend selected by the config. A file cache that
// cannot be created degrades to no caching; remote backends must connect.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cc := c.Config.Cache
	if c.noCache {
		return cache.NewNullCache(), nil
	}

	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(cc.Memory.Size)
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.Redis.Addr,
			Password: cc.Redis.Password,
			DB:       cc.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cc.Mongo.URI,
			Database:   cc.Mongo.Database,
			Collection: cc.Mongo.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo cache: %w", err)
		}
		return mc, nil
	default:
		fc, err := cache.NewFileCache(cc.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cc.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}
