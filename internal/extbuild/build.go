// Package extbuild drives the optional native kernel build. The
// library itself is pure Go; the compiled extension only accelerates
// large lattices, mirroring how the samplers fall back to the portable
// path when it is absent.
package extbuild

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// minWindowsCMake is the oldest generator version that handles the
// per-configuration output directories we pass on Windows.
const minWindowsCMake = "3.1.0"

// truthy values accepted by EnvFlag, upper-cased.
var truthy = map[string]bool{
	"ON":   true,
	"1":    true,
	"YES":  true,
	"TRUE": true,
	"Y":    true,
}

// EnvFlag reports whether the named environment variable is set to a
// truthy value (on, 1, yes, true, y; any case). Unset, empty and every
// other value count as false.
func EnvFlag(name string) bool {
	return truthy[strings.ToUpper(os.Getenv(name))]
}

// Config describes one native build invocation.
type Config struct {
	SourceDir string
	BuildDir  string
	OutputDir string
	Debug     bool
	Sanitizer bool
	Version   string // embedded into the kernel as VERSION_INFO

	// CMake overrides the build tool binary; empty means "cmake".
	CMake string

	// Stdout/Stderr receive the tool output; nil discards it.
	Stdout, Stderr *os.File
}

// DefaultConfig reads the DEBUG and SANITIZER environment flags, the
// way the kernel build has always been configured.
func DefaultConfig(sourceDir string) Config {
	return Config{
		SourceDir: sourceDir,
		BuildDir:  filepath.Join(sourceDir, "build"),
		OutputDir: filepath.Join(sourceDir, "lib"),
		Debug:     EnvFlag("DEBUG"),
		Sanitizer: EnvFlag("SANITIZER"),
	}
}

// Build configures and compiles the native kernels. It fails
// immediately when the build tool is missing, and on Windows when the
// tool is older than the minimum supported version.
func Build(cfg Config) error {
	tool := cfg.CMake
	if tool == "" {
		tool = "cmake"
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return fmt.Errorf("extbuild: cmake must be installed to build the native kernels: %w", err)
	}

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return fmt.Errorf("extbuild: cmake --version: %w", err)
	}
	version, err := parseCMakeVersion(string(out))
	if err != nil {
		return err
	}
	if runtime.GOOS == "windows" && versionLess(version, minWindowsCMake) {
		return fmt.Errorf("extbuild: cmake >= %s is required on Windows, found %s", minWindowsCMake, version)
	}

	if err := os.MkdirAll(cfg.BuildDir, 0755); err != nil {
		return err
	}

	env := append(os.Environ(),
		fmt.Sprintf("CXXFLAGS=%s -DVERSION_INFO=\\\"%s\\\"", os.Getenv("CXXFLAGS"), cfg.Version))

	configure := exec.Command(path, append([]string{cfg.SourceDir}, configureArgs(cfg, runtime.GOOS)...)...)
	configure.Dir = cfg.BuildDir
	configure.Env = env
	configure.Stdout = cfg.Stdout
	configure.Stderr = cfg.Stderr
	if err := configure.Run(); err != nil {
		return fmt.Errorf("extbuild: configure: %w", err)
	}

	build := exec.Command(path, append([]string{"--build", "."}, buildArgs(cfg, runtime.GOOS)...)...)
	build.Dir = cfg.BuildDir
	build.Env = env
	build.Stdout = cfg.Stdout
	build.Stderr = cfg.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("extbuild: build: %w", err)
	}
	return nil
}

func buildType(cfg Config) string {
	if cfg.Debug {
		return "Debug"
	}
	return "Release"
}

func configureArgs(cfg Config, goos string) []string {
	bt := buildType(cfg)
	args := []string{"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + cfg.OutputDir}
	if goos == "windows" {
		args = append(args,
			fmt.Sprintf("-DCMAKE_LIBRARY_OUTPUT_DIRECTORY_%s=%s", strings.ToUpper(bt), cfg.OutputDir),
			"-A", "x64")
		return args
	}
	args = append(args, "-DCMAKE_BUILD_TYPE="+bt)
	if cfg.Sanitizer {
		args = append(args, "-DVMCLAB_Sanitizer=ON")
	}
	return args
}

func buildArgs(cfg Config, goos string) []string {
	args := []string{"--config", buildType(cfg)}
	if goos == "windows" {
		return append(args, "--", "/m")
	}
	return append(args, "--", "-j2")
}

var versionRe = regexp.MustCompile(`version\s*([\d.]+)`)

func parseCMakeVersion(out string) (string, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("extbuild: cannot parse cmake version from %q", strings.TrimSpace(out))
	}
	return m[1], nil
}

// versionLess compares dotted numeric versions component-wise.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var ai, bi int
		if i < len(as) {
			ai, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bi, _ = strconv.Atoi(bs[i])
		}
		if ai != bi {
			return ai < bi
		}
	}
	return false
}
