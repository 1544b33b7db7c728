package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"

	"github.com/jmagar/ytgrab/internal/fetch"
	"github.com/jmagar/ytgrab/internal/helpers"
	"github.com/jmagar/ytgrab/internal/model"
	"github.com/jmagar/ytgrab/internal/ui"
)

// LoadedConfigPath tracks which config file was loaded, if any.
var LoadedConfigPath string

// warnOut receives config warnings.
var warnOut io.Writer = os.Stderr

// logPathOff disables the activity log when used as logPath.
const logPathOff = "off"

// ConfigPaths lists the locations searched for a config file, in order.
func ConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		model.ConfigFileJSON,
		model.ConfigFileYAML,
		model.ConfigFileYML,
		filepath.Join(homeDir, model.DefaultAppDir, model.ConfigFileJSON),
		filepath.Join(homeDir, model.DefaultAppDir, model.ConfigFileYAML),
		filepath.Join(homeDir, model.DefaultAppDir, model.ConfigFileYML),
		filepath.Join(homeDir, ".config", "ytgrab", model.ConfigFileJSON),
		filepath.Join(homeDir, ".config", "ytgrab", model.ConfigFileYAML),
		filepath.Join(homeDir, ".config", "ytgrab", model.ConfigFileYML),
	}, nil
}

// ReadConfig loads the config file. An explicit path must exist; otherwise
// the first file found in ConfigPaths wins, and finding none yields an empty
// Config.
func ReadConfig(explicit string) (*model.Config, error) {
	LoadedConfigPath = ""
	var candidates []string
	if explicit != "" {
		path, err := helpers.ExpandHome(explicit)
		if err != nil {
			return nil, err
		}
		candidates = []string{path}
	} else {
		paths, err := ConfigPaths()
		if err != nil {
			return nil, err
		}
		candidates = paths
	}

	var data []byte
	var configPath string
	for _, path := range candidates {
		b, err := os.ReadFile(path)
		if err == nil {
			data, configPath = b, path
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
		}
	}
	if configPath == "" {
		if explicit != "" {
			return nil, fmt.Errorf("%w: %s", model.ErrConfigNotFound, explicit)
		}
		return &model.Config{}, nil
	}

	obj, err := decode(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config at %s: %w", configPath, err)
	}
	LoadedConfigPath = configPath
	checkPermissions(configPath, obj)
	return obj, nil
}

func decode(path string, data []byte) (*model.Config, error) {
	var obj model.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
	}
	return &obj, nil
}

// checkPermissions warns about config files readable by others, since they
// may hold a notification token.
func checkPermissions(configPath string, cfg *model.Config) {
	if strings.TrimSpace(cfg.GotifyToken) == "" {
		return
	}
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return
	}
	mode := fileInfo.Mode()
	if mode.Perm()&0077 == 0 {
		return
	}
	fmt.Fprintf(warnOut, "%s WARNING: Config file has insecure permissions (%04o)\n", ui.ColorYellow+ui.SymbolWarning+ui.ColorReset, mode.Perm())
	fmt.Fprintf(warnOut, "   File: %s\n", configPath)
	fmt.Fprintf(warnOut, "   Risk: Config contains a Gotify token and should only be readable by you\n")
	if runtime.GOOS == "windows" {
		fmt.Fprintf(warnOut, "   Windows ACLs in use; skipping chmod auto-fix\n\n")
		return
	}
	if chmodErr := os.Chmod(configPath, 0600); chmodErr != nil {
		fmt.Fprintf(warnOut, "   Auto-fix failed: %v\n", chmodErr)
		fmt.Fprintf(warnOut, "   Fix manually: chmod 600 %s\n\n", configPath)
		return
	}
	fmt.Fprintf(warnOut, "   Auto-fix applied: chmod 600 %s\n\n", configPath)
}

// ParseCfg reads the config file named by args (or found on the search
// path) and overlays the CLI flags. Flags win over the file, the file wins
// over defaults.
func ParseCfg(args *model.Args) (*model.Config, error) {
	cfg, err := ReadConfig(strings.TrimSpace(args.ConfigPath))
	if err != nil {
		return nil, err
	}

	cfg.OutPath = strings.TrimSpace(cfg.OutPath)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Format = strings.TrimSpace(cfg.Format)
	cfg.FilenameTemplate = strings.TrimSpace(cfg.FilenameTemplate)
	cfg.YtdlpPath = strings.TrimSpace(cfg.YtdlpPath)
	cfg.LogPath = strings.TrimSpace(cfg.LogPath)

	if args.OutPath != "" {
		cfg.OutPath = args.OutPath
	}
	if args.Backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(args.Backend))
	}
	if args.Format != "" {
		cfg.Format = args.Format
	}
	if args.Template != "" {
		cfg.FilenameTemplate = args.Template
	}
	if args.IgnoreErrors {
		cfg.IgnoreErrors = true
	}
	cfg.URL = strings.TrimSpace(args.URL)
	cfg.InfoOnly = args.Info
	cfg.Quiet = args.Quiet
	cfg.Debug = args.Debug

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if !slices.Contains(fetch.Backends(), cfg.Backend) {
		return nil, fmt.Errorf("invalid backend: %q (must be one of %s)", cfg.Backend, strings.Join(fetch.Backends(), ", "))
	}
	if err := helpers.ValidatePath(cfg.OutPath); err != nil {
		return nil, fmt.Errorf("invalid outPath: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *model.Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	if cfg.OutPath == "" {
		cfg.OutPath = filepath.Join(homeDir, model.DefaultOutDir)
	}
	if cfg.Backend == "" {
		cfg.Backend = model.DefaultBackend
	}
	if cfg.FilenameTemplate == "" {
		cfg.FilenameTemplate = model.DefaultFilenameTemplate
	}
	if cfg.Format == "" {
		cfg.Format = model.DefaultFormat
	}
	switch strings.ToLower(cfg.LogPath) {
	case logPathOff:
		cfg.LogPath = ""
	case "":
		cfg.LogPath = filepath.Join(homeDir, model.DefaultAppDir, model.DefaultLogFile)
	default:
		if cfg.LogPath, err = helpers.ExpandHome(cfg.LogPath); err != nil {
			return err
		}
	}
	if cfg.YtdlpPath != "" {
		if cfg.YtdlpPath, err = helpers.ExpandHome(cfg.YtdlpPath); err != nil {
			return err
		}
	}
	return nil
}

// ParseArgs parses argv (without the program name) using go-arg. Help and
// version requests are printed and returned as arg.ErrHelp / arg.ErrVersion;
// other parse errors print the usage line to stderr.
func ParseArgs(argv []string) (*model.Args, error) {
	var args model.Args
	p, err := arg.NewParser(arg.Config{Program: "ytgrab"}, &args)
	if err != nil {
		return nil, err
	}
	err = p.Parse(argv)
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		return nil, err
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(args.Version())
		return nil, err
	case err != nil:
		p.WriteUsage(os.Stderr)
		return nil, err
	}
	return &args, nil
}
