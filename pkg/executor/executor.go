package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/gnodet/hnvm/pkg/cache"
	"github.com/gnodet/hnvm/pkg/config"
	"github.com/gnodet/hnvm/pkg/output"
	"github.com/gnodet/hnvm/pkg/registry"
	"github.com/gnodet/hnvm/pkg/resolve"
	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/gnodet/hnvm/pkg/util"
	"github.com/gnodet/hnvm/pkg/version"
	"golang.org/x/sync/errgroup"
)

const maxParallelInstalls = 3

// LaunchFunc replaces the current process with binary. It only returns on failure.
type LaunchFunc func(binary string, argv []string, env []string) error

// Invocation is a fully resolved command line, ready to launch
type Invocation struct {
	Program string
	Argv    []string
	Env     []string
}

// Executor resolves tool requirements, installs missing versions and launches binaries
type Executor struct {
	settings    *config.Settings
	toolManager *tools.Manager
	store       *cache.Store
	registry    *registry.Client
	printer     *output.Printer
	dest        output.Destination
	workDir     string
	environ     []string
	launch      LaunchFunc

	manifest       *config.Manifest
	manifestLoaded bool
	packages       map[string]*resolve.PackageInfo
}

// NewExecutor creates a new executor working on behalf of a project in workDir
func NewExecutor(settings *config.Settings, toolManager *tools.Manager, dest output.Destination, printer *output.Printer, workDir string) *Executor {
	return &Executor{
		settings:    settings,
		toolManager: toolManager,
		store:       cache.NewStore(settings.Path),
		registry:    registry.NewClient(toolManager.Client(), toolManager.RewriteURL(settings.RegistryURL), settings.RegistryTimeout),
		printer:     printer,
		dest:        dest,
		workDir:     workDir,
		environ:     os.Environ(),
		launch:      Launch,
		packages:    make(map[string]*resolve.PackageInfo),
	}
}

// SetLauncher replaces the process launcher
func (e *Executor) SetLauncher(launch LaunchFunc) {
	e.launch = launch
}

// SetEnviron replaces the environment passed to launched programs
func (e *Executor) SetEnviron(environ []string) {
	e.environ = environ
}

// Store returns the cache store
func (e *Executor) Store() *cache.Store {
	return e.store
}

// loadManifest finds the project manifest once
func (e *Executor) loadManifest() (*config.Manifest, error) {
	if e.manifestLoaded {
		return e.manifest, nil
	}
	m, err := config.FindManifest(e.workDir)
	if err != nil {
		return nil, &tools.ConfigError{Msg: "invalid project manifest", Err: err}
	}
	if m != nil {
		util.LogVerbose("Using manifest %s", m.Path)
	}
	e.manifest = m
	e.manifestLoaded = true
	return m, nil
}

// Requirement returns what the project asks for: HNVM_<TOOL>_VERSION first, then package.json engines
func (e *Executor) Requirement(tool string) (resolve.Requirement, error) {
	if override := e.settings.VersionOverride(tool); override != "" {
		util.LogVerbose("Using %s=%s", tools.VersionOverrideEnvVar(tool), override)
		return resolve.Requirement{Tool: tool, Spec: override}, nil
	}
	m, err := e.loadManifest()
	if err != nil {
		return resolve.Requirement{}, err
	}
	return resolve.Requirement{Tool: tool, Spec: m.Engine(tool)}, nil
}

// HasRequirement reports whether the project declares a version for tool
func (e *Executor) HasRequirement(tool string) (bool, error) {
	req, err := e.Requirement(tool)
	if err != nil {
		return false, err
	}
	return req.Spec != "", nil
}

// ResolveVersion turns a requirement into a concrete version.
// Exact versions are used as is, ranges are first matched against the cache,
// and the registry is only consulted when nothing installed satisfies them.
func (e *Executor) ResolveVersion(ctx context.Context, req resolve.Requirement) (resolve.Resolved, error) {
	variant := ""
	if req.Tool == tools.ToolNode {
		variant = e.settings.Variant(req.Tool)
	}

	if version.IsExact(req.Spec) {
		v, _ := version.Parse(req.Spec)
		return resolve.Resolved{Tool: req.Tool, Version: v.String(), Variant: variant}, nil
	}

	if version.IsValidRange(req.Spec) {
		installed, err := e.installedVersions(req.Tool, variant)
		if err != nil {
			return resolve.Resolved{}, err
		}
		res, err := resolve.Resolve(req, resolve.ExplicitCandidates{Versions: installed})
		if err == nil {
			res.Variant = variant
			e.printResolved(req, res)
			return res, nil
		}
		if !errors.Is(err, tools.ErrNoMatchingVersion) {
			return resolve.Resolved{}, err
		}
		util.LogVerbose("No installed %s satisfies %q, querying the registry", req.Tool, req.Spec)
	}

	info, err := e.packageInfo(ctx, req.Tool)
	if err != nil {
		return resolve.Resolved{}, err
	}
	res, err := resolve.Resolve(req, resolve.RegistryCandidates{Info: info})
	if err != nil {
		return resolve.Resolved{}, err
	}
	res.Variant = variant
	e.printResolved(req, res)
	return res, nil
}

func (e *Executor) printResolved(req resolve.Requirement, res resolve.Resolved) {
	spec := req.Spec
	if spec == "" {
		spec = "*"
	}
	e.printer.Info("Resolved %s %s to %s", req.Tool, spec, res.Version)
}

// installedVersions lists complete cache entries of tool built for variant, newest first
func (e *Executor) installedVersions(tool, variant string) ([]string, error) {
	if variant == "" {
		return e.store.Installed(tool)
	}
	entries, err := e.store.Entries(tool)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, entry := range entries {
		if entry.Key.Variant == variant {
			versions = append(versions, entry.Key.Version)
		}
	}
	return versions, nil
}

func (e *Executor) packageInfo(ctx context.Context, toolName string) (*resolve.PackageInfo, error) {
	if info, ok := e.packages[toolName]; ok {
		return info, nil
	}
	tool, err := e.toolManager.GetTool(toolName)
	if err != nil {
		return nil, err
	}
	info, err := e.registry.PackageInfo(ctx, tool.Package())
	if err != nil {
		return nil, tools.NewToolError(toolName, "", "registry lookup", err)
	}
	e.packages[toolName] = info
	return info, nil
}

// Ensure makes sure the resolved version is in the cache, downloading it when needed
func (e *Executor) Ensure(ctx context.Context, res resolve.Resolved) (*cache.Entry, error) {
	key := cache.Key{Tool: res.Tool, Version: res.Version, Variant: res.Variant}
	if e.store.Has(key) {
		util.LogVerbose("%s found in cache at %s", key, e.store.Path(key))
		return e.store.Get(key)
	}

	tool, err := e.toolManager.GetTool(res.Tool)
	if err != nil {
		return nil, err
	}
	platform := e.toolManager.Platform()
	url, err := tool.DownloadURL(res.Version, res.Variant, platform)
	if err != nil {
		return nil, err
	}
	filename := path.Base(url)
	url = e.toolManager.RewriteURL(url)

	if !e.settings.SkipURLValidation {
		target := tools.Target{Tool: res.Tool, Version: res.Version, Variant: res.Variant, URL: url}
		if err := e.toolManager.Validator().Validate(ctx, target); err != nil {
			return nil, err
		}
	}

	e.printer.Info("Downloading %s v%s...", res.Tool, res.Version)
	downloader := e.toolManager.Downloader(e.dest.Writer, e.dest.IsTerminal()).
		WithDescription(fmt.Sprintf("%s v%s", res.Tool, res.Version))

	entry, err := e.store.Install(key, url, func(staging string) error {
		archive, err := downloader.FetchToFile(ctx, url, filepath.Dir(staging))
		if err != nil {
			return err
		}
		defer os.Remove(archive)

		if err := e.verifyChecksum(ctx, tool, res, url, filename, archive); err != nil {
			return err
		}
		if err := tools.ExtractArchive(archive, staging); err != nil {
			return tools.InstallError(res.Tool, res.Version, err)
		}
		return nil
	})
	if err != nil {
		var fetchErr *tools.FetchError
		if errors.As(err, &fetchErr) {
			if hint := tools.DiagnoseDownloadError(url, err); hint != "" {
				util.LogVerbose("%s", hint)
			}
			return nil, tools.DownloadError(res.Tool, res.Version, err)
		}
		return nil, tools.WrapError(res.Tool, res.Version, "install", err)
	}
	return entry, nil
}

// verifyChecksum checks the archive against the published SHA-256 listing when there is one.
// An unreachable listing only warns; a mismatch fails the install.
func (e *Executor) verifyChecksum(ctx context.Context, tool tools.Tool, res resolve.Resolved, url, filename, archive string) error {
	checksumURL := tool.ChecksumURL(res.Version, res.Variant, e.toolManager.Platform())
	if checksumURL == "" || e.settings.SkipChecksum {
		return nil
	}
	checksumURL = e.toolManager.RewriteURL(checksumURL)
	verifier := e.toolManager.ChecksumVerifier()
	expected, err := verifier.FetchChecksum(ctx, checksumURL, filename)
	if err != nil {
		e.printer.Warn("Could not verify the checksum of %s: %v", filename, err)
		return nil
	}
	info := tools.ChecksumInfo{Type: tools.SHA256, Value: expected, Filename: filename}
	if err := verifier.VerifyFile(ctx, archive, info); err != nil {
		return &tools.FetchError{URL: url, Err: err}
	}
	return nil
}

// Install resolves and installs the version a project requires for tool
func (e *Executor) Install(ctx context.Context, tool string) (*cache.Entry, error) {
	req, err := e.Requirement(tool)
	if err != nil {
		return nil, err
	}
	res, err := e.ResolveVersion(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.Ensure(ctx, res)
}

// Prepare builds the invocation running binary (node, npm, npx, pnpm, pnpx) with args
func (e *Executor) Prepare(ctx context.Context, binary string, args []string) (*Invocation, error) {
	tool, err := e.toolManager.ToolForBinary(binary)
	if err != nil {
		return nil, err
	}

	nodeEntry, err := e.Install(ctx, tools.ToolNode)
	if err != nil {
		return nil, err
	}
	platform := e.toolManager.Platform()
	node, err := e.toolManager.GetTool(tools.ToolNode)
	if err != nil {
		return nil, err
	}
	nodeBinary, err := node.Entrypoint(nodeEntry.Dir, tools.BinaryNode, platform)
	if err != nil {
		return nil, &tools.LaunchError{Binary: tools.BinaryNode, Reason: tools.ReasonNotFound, Err: err}
	}
	e.printer.Info("Using Hermetic %s v%s", node.DisplayName(), nodeEntry.Key.Version)

	entrypoint := nodeBinary
	if tool.Name() != tools.ToolNode {
		entrypoint, err = e.packageEntrypoint(ctx, tool, binary, node, nodeEntry)
		if err != nil {
			return nil, err
		}
	}

	env := tools.NewEnvironmentManager(e.environ)
	env.AddToPath(filepath.Dir(nodeBinary.Path))

	inv := &Invocation{Program: nodeBinary.Path, Env: env.ToSlice()}
	if entrypoint.Script {
		inv.Argv = append([]string{tools.BinaryNode, entrypoint.Path}, args...)
	} else {
		inv.Program = entrypoint.Path
		inv.Argv = append([]string{binary}, args...)
	}
	return inv, nil
}

// packageEntrypoint locates the script of a package manager binary. npm falls back to
// the copy bundled with Node.js when the project does not pin it.
func (e *Executor) packageEntrypoint(ctx context.Context, tool tools.Tool, binary string, node tools.Tool, nodeEntry *cache.Entry) (tools.Entrypoint, error) {
	platform := e.toolManager.Platform()
	if tool.Name() == tools.ToolNpm {
		pinned, err := e.HasRequirement(tools.ToolNpm)
		if err != nil {
			return tools.Entrypoint{}, err
		}
		if !pinned {
			util.LogVerbose("No npm version requested, using the one bundled with node %s", nodeEntry.Key.Version)
			ep, err := node.Entrypoint(nodeEntry.Dir, binary, platform)
			if err != nil {
				return tools.Entrypoint{}, &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotFound, Err: err}
			}
			return ep, nil
		}
	}

	entry, err := e.Install(ctx, tool.Name())
	if err != nil {
		return tools.Entrypoint{}, err
	}
	e.printer.Info("Using Hermetic %s v%s", tool.DisplayName(), entry.Key.Version)
	ep, err := tool.Entrypoint(entry.Dir, binary, platform)
	if err != nil {
		return tools.Entrypoint{}, &tools.LaunchError{Binary: binary, Reason: tools.ReasonNotFound, Err: err}
	}
	return ep, nil
}

// Run prepares binary and replaces the current process with it
func (e *Executor) Run(ctx context.Context, binary string, args []string) error {
	inv, err := e.Prepare(ctx, binary, args)
	if err != nil {
		return err
	}
	util.LogVerbose("Launching %s %v", inv.Program, inv.Argv[1:])
	return e.launch(inv.Program, inv.Argv, inv.Env)
}

// InstallAll installs the required version of each tool, a few at a time
func (e *Executor) InstallAll(ctx context.Context, toolNames []string) ([]*cache.Entry, error) {
	// Requirements and registry documents are resolved up front: the manifest
	// and package caches are not safe for concurrent use.
	resolved := make([]resolve.Resolved, len(toolNames))
	for i, name := range toolNames {
		req, err := e.Requirement(name)
		if err != nil {
			return nil, err
		}
		res, err := e.ResolveVersion(ctx, req)
		if err != nil {
			return nil, err
		}
		resolved[i] = res
	}

	entries := make([]*cache.Entry, len(resolved))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelInstalls)
	for i, res := range resolved {
		g.Go(func() error {
			entry, err := e.Ensure(ctx, res)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
