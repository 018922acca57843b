package esbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/evanw/esbuild/pkg/api"
	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

var (
	ErrBundleFailed      = errors.New("bundle failed")
	ErrUnsupportedFormat = errors.New("unsupported bundle format")
)

// Output formats.
const (
	FormatUMD  = "umd"
	FormatIIFE = "iife"
	FormatESM  = "esm"
)

// umdHeader and umdFooter wrap a CommonJS bundle so that it works with CommonJS, AMD and a browser global.
const (
	umdHeader = `(function (root, factory) {
  if (typeof exports === "object" && typeof module !== "undefined") {
    module.exports = factory();
  } else if (typeof define === "function" && define.amd) {
    define([], factory);
  } else {
    root[%q] = factory();
  }
}(typeof globalThis !== "undefined" ? globalThis : typeof self !== "undefined" ? self : this, function () {
var module = { exports: {} };
var exports = module.exports;`
	umdFooter = `return module.exports;
}));`
)

// Bundler builds standalone bundles with esbuild.
type Bundler struct{}

// NewBundler creates a new Bundler.
func NewBundler() *Bundler {
	return &Bundler{}
}

// Bundle implements repositories.Bundler.
func (it *Bundler) Bundle(ctx context.Context, request repositories.BundleRequest) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "bundle interrupted")
	}

	workDir, err := filepath.Abs(request.WorkDir)
	if err != nil {
		return errors.Wrap(err, "could not resolve working directory")
	}
	output := request.Output
	if !filepath.IsAbs(output) {
		output = filepath.Join(workDir, output)
	}

	options, err := buildOptions(workDir, request)
	if err != nil {
		return err
	}

	log.Infof("Bundling %s as '%s' (%s)", request.EntryPoint, GlobalIdentifier(request.GlobalName), FormatName(request.Options))
	result := api.Build(options)
	for _, warning := range result.Warnings {
		log.Warnf("esbuild: %s", warning.Text)
	}
	if len(result.Errors) > 0 {
		messages := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return errors.Wrapf(ErrBundleFailed, "%s", strings.Join(messages, "\n"))
	}
	if len(result.OutputFiles) == 0 {
		return errors.Wrap(ErrBundleFailed, "esbuild produced no output")
	}

	if err = os.WriteFile(output, result.OutputFiles[0].Contents, 0o644); err != nil {
		return errors.Wrapf(err, "could not write %s", request.Output)
	}
	return nil
}

func buildOptions(workDir string, request repositories.BundleRequest) (api.BuildOptions, error) {
	entryPoint := request.EntryPoint
	if !strings.HasPrefix(entryPoint, ".") && !filepath.IsAbs(entryPoint) {
		entryPoint = "./" + entryPoint
	}

	options := api.BuildOptions{
		AbsWorkingDir:     workDir,
		EntryPoints:       []string{entryPoint},
		Outfile:           request.Output,
		Bundle:            true,
		Write:             false,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  request.Options.Minify,
		MinifyIdentifiers: request.Options.Minify,
		MinifySyntax:      request.Options.Minify,
	}

	if request.Options.Target != "" {
		options.Target = parseTarget(request.Options.Target)
	}

	switch FormatName(request.Options) {
	case FormatUMD:
		options.Format = api.FormatCommonJS
		options.Platform = api.PlatformBrowser
		options.Banner = map[string]string{"js": fmt.Sprintf(umdHeader, GlobalIdentifier(request.GlobalName))}
		options.Footer = map[string]string{"js": umdFooter}
	case FormatIIFE:
		options.Format = api.FormatIIFE
		options.Platform = api.PlatformBrowser
		options.GlobalName = GlobalIdentifier(request.GlobalName)
	case FormatESM:
		options.Format = api.FormatESModule
		options.Platform = api.PlatformNeutral
	default:
		return options, errors.Wrapf(ErrUnsupportedFormat, "%q", request.Options.Format)
	}

	return options, nil
}

// FormatName returns the lowered output format, defaulting to UMD.
func FormatName(options entities.BundleSettings) string {
	if options.Format == "" {
		return FormatUMD
	}
	return strings.ToLower(options.Format)
}

func parseTarget(target string) api.Target {
	switch strings.ToLower(target) {
	case "es5":
		return api.ES5
	case "es2015", "es6":
		return api.ES2015
	case "es2017":
		return api.ES2017
	case "es2020":
		return api.ES2020
	case "esnext":
		return api.ESNext
	default:
		log.Warnf("Unknown bundle target %q, using esnext", target)
		return api.ESNext
	}
}

// GlobalIdentifier turns a package name into a JavaScript identifier: "@scope/my-lib" becomes "myLib".
func GlobalIdentifier(name string) string {
	if index := strings.LastIndex(name, "/"); index >= 0 {
		name = name[index+1:]
	}

	var builder strings.Builder
	upperNext := false
	for _, char := range name {
		switch {
		case unicode.IsLetter(char) || unicode.IsDigit(char) || char == '$':
			if upperNext && builder.Len() > 0 {
				char = unicode.ToUpper(char)
			}
			builder.WriteRune(char)
			upperNext = false
		default:
			upperNext = true
		}
	}

	identifier := builder.String()
	if identifier == "" {
		return "bundle"
	}
	if unicode.IsDigit(rune(identifier[0])) {
		identifier = "_" + identifier
	}
	return identifier
}
