package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/labnotes/internal/assets"
	"github.com/alnah/labnotes/internal/cli"
	"github.com/alnah/labnotes/internal/config"
	"github.com/alnah/labnotes/internal/notes"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Notes    notesInfo  `json:"notes"`
	Assets   assetsInfo `json:"assets"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Required bool   `json:"required"` // math mode is browser
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
}

// notesInfo describes the notes directory.
type notesInfo struct {
	Dir      string `json:"dir"`
	Readable bool   `json:"readable"`
	Count    int    `json:"count"`
	Index    bool   `json:"index"`
}

// assetsInfo describes the theme and template pages are rendered with.
type assetsInfo struct {
	BasePath string `json:"base_path,omitempty"`
	Custom   bool   `json:"custom"`
	Theme    string `json:"theme"`
	Loaded   bool   `json:"loaded"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *cli.Environment) int {
	flags, rest, err := parseDoctorFlags(args, env.Stdout, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return cli.ExitSuccess
	}
	if err != nil {
		cli.PrintError(env.Stderr, fmt.Errorf("%w: %v", cli.ErrUsage, err))
		return cli.ExitUsage
	}

	cfg, err := cli.LoadConfig(flags.config, env, flags.json)
	if err != nil {
		cli.PrintError(env.Stderr, err)
		return cli.ExitCodeFor(err)
	}
	if len(rest) > 0 {
		cfg.Notes.Dir = rest[0]
	}

	result := runDoctor(cfg, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return cli.ExitGeneral
	}
	return cli.ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, env *cli.Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}
	result.Chrome.Required = cfg.Math.Mode == config.MathBrowser

	checkChrome(result)
	checkEnvironment(result, env)
	checkNotes(result, cfg.Notes.Dir)
	checkAssets(result, cfg)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation. A missing browser is
// an error only in browser math mode.
func checkChrome(result *doctorResult) {
	report := func(msg string) {
		if result.Chrome.Required {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+" (only needed for --math browser)")
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from ROD_BROWSER_BIN or launcher lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *cli.Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Required && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(env *cli.Environment) (bool, string) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := env.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if env.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkNotes verifies that the notes directory can be served.
func checkNotes(result *doctorResult, dir string) {
	result.Notes.Dir = dir

	book := notes.New(dir)
	ids, err := book.List()
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Notes directory not readable: %v", err))
		return
	}
	result.Notes.Readable = true
	result.Notes.Count = len(ids)

	if _, err := book.Index(); err == nil {
		result.Notes.Index = true
	}

	if len(ids) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No notes found in %s", dir))
	}
}

// checkAssets loads the configured theme and the page template, from the
// custom directory when one is set.
func checkAssets(result *doctorResult, cfg *config.Config) {
	result.Assets.BasePath = cfg.Assets.BasePath
	result.Assets.Theme = cfg.Theme
	if result.Assets.Theme == "" {
		result.Assets.Theme = assets.DefaultTheme
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Assets directory: %v", err))
		return
	}
	result.Assets.Custom = resolver.HasCustomLoader()

	if _, err := resolver.LoadStyle(result.Assets.Theme); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Theme %q: %v", result.Assets.Theme, err))
		return
	}
	if _, err := resolver.LoadTemplate(assets.PageTemplate); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Page template: %v", err))
		return
	}
	result.Assets.Loaded = true
}

// checkSystem verifies that the browser profile can be created.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "labnotes-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		msg := fmt.Sprintf("Temp directory not writable: %s", tmpDir)
		if result.Chrome.Required {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "labnotes doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Notes")
	if r.Notes.Readable {
		fmt.Fprintf(w, "  [OK] Directory: %s (%d notes)\n", r.Notes.Dir, r.Notes.Count)
		if r.Notes.Index {
			fmt.Fprintln(w, "  [OK] Home page: index.md")
		} else {
			fmt.Fprintln(w, "  [OK] Home page: generated contents")
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] Directory: %s\n", r.Notes.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assets")
	source := "embedded"
	if r.Assets.Custom {
		source = r.Assets.BasePath
	}
	if r.Assets.Loaded {
		fmt.Fprintf(w, "  [OK] Theme: %s (%s)\n", r.Assets.Theme, source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Theme: %s (%s)\n", r.Assets.Theme, source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	case r.Chrome.Required:
		fmt.Fprintln(w, "  [ERROR] Not found")
	default:
		fmt.Fprintln(w, "  [WARN] Not found (math is typeset in the reader's browser)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
