package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/usernamecheck/username-checker/pkg/infrastructure/http"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/storage"
	"github.com/usernamecheck/username-checker/pkg/input"
	"github.com/usernamecheck/username-checker/pkg/logging"
)

// LogOptions are shared by every command
type LogOptions struct {
	LogLevel string `long:"log-level" description:"Log level (debug, info, warn, error)" default:"info"`
	LogFile  string `long:"log-file" description:"Write logs to this file instead of stderr"`
	Debug    bool   `long:"debug" description:"Human readable development logs"`
}

// Logging converts the options into a logger configuration
func (o *LogOptions) Logging() logging.Config {
	return logging.Config{
		Development: o.Debug,
		Level:       o.LogLevel,
		OutputPath:  o.LogFile,
	}
}

// Options is the root of the command line
type Options struct {
	LogOptions `group:"Logging"`

	Check    CheckCommand    `command:"check" description:"Check candidate usernames against the registry"`
	Generate GenerateCommand `command:"generate" description:"Write a candidate list"`
	Version  VersionCommand  `command:"version" description:"Print version information"`
}

// NewOptions creates options whose commands share the logging group
func NewOptions() *Options {
	opts := &Options{}
	opts.Check.log = &opts.LogOptions
	opts.Generate.log = &opts.LogOptions
	return opts
}

// Run parses args and executes the selected command
func Run(args []string) error {
	opts := NewOptions()
	parser := flags.NewParser(opts, flags.Default)
	parser.Usage = "[OPTIONS] <check | generate | version>"

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}
	return nil
}

// CheckCommand holds the configuration of a check run
type CheckCommand struct {
	// Input/Output
	Dir       string   `short:"d" long:"dir" description:"Directory searched for candidate lists and holding the default outputs" default:"."`
	Inputs    []string `short:"i" long:"input" description:"Candidate list to read (repeatable); disables discovery"`
	Checked   string   `long:"checked" description:"Checkpoint file of processed usernames" default:"checked_usernames.txt"`
	Available string   `long:"available" description:"File collecting available usernames" default:"available_usernames.txt"`
	Unused    string   `long:"unused" description:"File collecting unavailable usernames (empty disables)"`
	Auction   string   `long:"auction" description:"File collecting usernames on auction (empty disables)"`
	Summary   string   `long:"summary" description:"Summary file written at the end of every run" default:"summary.json"`
	Fsync     bool     `long:"fsync" description:"Sync output files after every append"`

	// Probing
	Endpoint        string        `long:"endpoint" description:"Registry URL template, {id} is replaced by the username" default:"https://fragment.com/username/{id}"`
	Timeout         time.Duration `short:"t" long:"timeout" description:"Timeout of each probe" default:"10s"`
	MaxResponseSize int64         `long:"max-response-size" description:"Maximum response body size in bytes" default:"10485760"`
	UserAgent       string        `long:"user-agent" description:"Fixed User-Agent header (default rotates browser agents)"`

	// Throttling
	Concurrency int           `short:"c" long:"concurrency" description:"Maximum probes in flight" default:"100"`
	Delay       time.Duration `long:"delay" description:"Pause after each probe before its slot is reused" default:"50ms"`
	RPS         float64       `long:"rps" description:"Global probe start rate ceiling per second (0 disables)" default:"0"`
	Burst       int           `long:"burst" description:"Burst allowed by --rps" default:"1"`
	BatchSize   int           `short:"b" long:"batch-size" description:"Usernames per progress report" default:"1000"`

	// Dedup
	BloomSize uint    `long:"bloom-size" description:"Expected number of distinct usernames" default:"4194304"`
	BloomFP   float64 `long:"bloom-fp" description:"Bloom filter false positive rate" default:"0.01"`

	// UI
	Dashboard   bool   `long:"dashboard" description:"Show interactive TUI dashboard (p/space pause, q quit)"`
	Progress    bool   `long:"progress" description:"Show a progress bar"`
	MetricsAddr string `long:"metrics-addr" description:"Serve Prometheus metrics on this address"`

	log *LogOptions
}

// Validate validates the configuration
func (c *CheckCommand) Validate() error {
	if c.Concurrency < 1 || c.Concurrency > 1000 {
		return fmt.Errorf("concurrency must be between 1 and 1000, got %d", c.Concurrency)
	}

	if c.Delay < 0 || c.Delay > time.Minute {
		return fmt.Errorf("delay must be between 0 and 1m, got %s", c.Delay)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be > 0, got %d", c.BatchSize)
	}

	if c.Timeout <= 0 || c.Timeout > 5*time.Minute {
		return fmt.Errorf("timeout must be in (0, 5m], got %s", c.Timeout)
	}

	if c.RPS < 0 {
		return fmt.Errorf("rps must be >= 0, got %f", c.RPS)
	}

	if c.Burst < 1 {
		return fmt.Errorf("burst must be > 0, got %d", c.Burst)
	}

	if c.MaxResponseSize <= 0 {
		return fmt.Errorf("max response size must be > 0, got %d", c.MaxResponseSize)
	}

	if c.BloomFP <= 0 || c.BloomFP >= 1 {
		return fmt.Errorf("bloom filter false positive rate must be between 0 and 1, got %f", c.BloomFP)
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Endpoint)
	}

	if c.Checked == "" || c.Available == "" || c.Summary == "" {
		return fmt.Errorf("checked, available and summary paths must not be empty")
	}

	if c.Dashboard && c.Progress {
		return fmt.Errorf("--dashboard and --progress cannot be combined")
	}

	return nil
}

// storageOptions returns how the output files are opened
func (c *CheckCommand) storageOptions() storage.Options {
	opts := storage.DefaultOptions()
	opts.Sync = c.Fsync
	opts.Index = storage.Config{Size: c.BloomSize, FalsePositiveRate: c.BloomFP}
	return opts
}

// proberConfig returns the probe client configuration
func (c *CheckCommand) proberConfig() http.Config {
	return http.Config{
		Endpoint:        c.Endpoint,
		Timeout:         c.Timeout,
		MaxResponseSize: c.MaxResponseSize,
		UserAgent:       c.UserAgent,
		MaxIdleConns:    c.Concurrency,
	}
}

// GenerateCommand writes candidate lists
type GenerateCommand struct {
	Length   int    `short:"l" long:"length" description:"Username length" default:"5"`
	Count    int    `short:"n" long:"count" description:"Random unique usernames to write (0 writes every combination)" default:"0"`
	Alphabet string `long:"alphabet" description:"Characters to combine" default:"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"`
	Seed     int64  `long:"seed" description:"Random seed (0 picks one from the clock)"`
	Output   string `short:"o" long:"output" description:"Output file, - for stdout (default <length>letter.txt)"`
	Force    bool   `short:"f" long:"force" description:"Overwrite an existing output file"`

	log *LogOptions
}

// maxFullSpace caps how many lines a full enumeration may write
const maxFullSpace = 100_000_000

// Validate validates the configuration
func (g *GenerateCommand) Validate() error {
	if g.Length < 1 || g.Length > 32 {
		return fmt.Errorf("length must be between 1 and 32, got %d", g.Length)
	}

	if g.Count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", g.Count)
	}

	gen, err := input.NewGenerator(g.Alphabet, 1)
	if err != nil {
		return err
	}
	space := gen.Space(g.Length)
	if g.Count == 0 && space > maxFullSpace {
		return fmt.Errorf("%0.f combinations of length %d is too many to enumerate, use --count", space, g.Length)
	}
	if float64(g.Count) > space {
		return fmt.Errorf("count %d exceeds the %0.f combinations of length %d", g.Count, space, g.Length)
	}

	return nil
}

// outputPath returns where the list is written
func (g *GenerateCommand) outputPath() string {
	if g.Output != "" {
		return g.Output
	}
	return fmt.Sprintf("%dletter.txt", g.Length)
}

// VersionCommand prints version information
type VersionCommand struct{}
