package testgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Engine drives a collection through expansion, seeded execution,
// validation and persistence.
//
// Execution is deliberately single-threaded and sequential: one invocation
// is processed fully before the next starts, which keeps seed derivation,
// slug resolution and the on-disk write order trivially deterministic.
// Invocations share no mutable state, so a future parallel driver would
// only need to fix the write order.
type Engine struct {
	collection    *Collection
	configManager *ConfigManager
	logger        Logger

	performanceMonitor *PerformanceMonitor
	publisher          Publisher
}

// NewEngine creates a generation engine for the given collection with
// configuration loaded from the default config file.
func NewEngine(collection *Collection) *Engine {
	return &Engine{
		collection:         collection,
		configManager:      NewConfigManager(),
		logger:             &DefaultLogger{},
		performanceMonitor: NewPerformanceMonitor(),
	}
}

// NewEngineWithConfig creates a generation engine with a custom config manager
func NewEngineWithConfig(collection *Collection, cm *ConfigManager) *Engine {
	return &Engine{
		collection:         collection,
		configManager:      cm,
		logger:             &DefaultLogger{},
		performanceMonitor: NewPerformanceMonitor(),
	}
}

// NewEngineWithLogger creates a generation engine with a custom logger
func NewEngineWithLogger(collection *Collection, logger Logger) *Engine {
	return &Engine{
		collection:         collection,
		configManager:      NewConfigManager(),
		logger:             logger,
		performanceMonitor: NewPerformanceMonitor(),
	}
}

// NewEngineWithConfigAndLogger creates a generation engine with a custom
// config manager and logger
func NewEngineWithConfigAndLogger(collection *Collection, cm *ConfigManager, logger Logger) *Engine {
	return &Engine{
		collection:         collection,
		configManager:      cm,
		logger:             logger,
		performanceMonitor: NewPerformanceMonitor(),
	}
}

// SetPublisher attaches a manifest publisher (normally a BreakerStore over
// a ManifestStore). Without one, manifests are still built and returned in
// the report but never leave the process.
func (e *Engine) SetPublisher(p Publisher) { e.publisher = p }

// GetConfig returns the current configuration
func (e *Engine) GetConfig() *Config { return e.configManager.GetConfig() }

// SetLogger updates the logger at runtime
func (e *Engine) SetLogger(logger Logger) {
	if logger != nil && logger != e.logger {
		e.logger = logger
	}
}

// GetLogger returns the current logger
func (e *Engine) GetLogger() Logger { return e.logger }

// PerformanceMetrics 获取性能指标
func (e *Engine) PerformanceMetrics() PerformanceMetrics {
	return e.performanceMonitor.GetMetrics()
}

// ResetPerformanceMetrics 重置性能指标
func (e *Engine) ResetPerformanceMetrics() {
	e.performanceMonitor.ResetMetrics()
}

// Plan resolves the full invocation plan without executing it: every
// registered generator expanded over its parameter product and repeats,
// with slugs and seeds assigned. Slug collisions are reported here.
func (e *Engine) Plan() ([]Invocation, error) {
	seedCfg, err := e.ensureConfig()
	if err != nil {
		return nil, err
	}
	return buildPlan(e.collection, seedCfg.Seed)
}

// Generate runs the full plan into the configured output directory.
func (e *Engine) Generate(ctx context.Context) error {
	if _, err := e.ensureConfig(); err != nil {
		return err
	}
	_, err := e.GenerateTo(ctx, e.configManager.GetConfig().Generation.OutputDir)
	return err
}

// GenerateTo runs the full plan into the given output directory and
// returns a report of what was written.
//
// Running it twice over an unchanged collection and seed config produces
// byte-identical files: every source of variability (seed, slug, execution
// order) is a pure function of static declaration data. On the first
// failing invocation the run aborts with an error identifying the failing
// declaration; files already written for earlier invocations stay on disk,
// partial files of the failing invocation are removed best-effort, and no
// later invocation is attempted.
func (e *Engine) GenerateTo(ctx context.Context, outputDir string) (*GenerationReport, error) {
	start := time.Now()

	seedCfg, err := e.ensureConfig()
	if err != nil {
		return nil, err
	}
	cfg := e.configManager.GetConfig()

	plan, err := buildPlan(e.collection, seedCfg.Seed)
	if err != nil {
		e.logger.Error("Plan resolution failed: %v", err)
		return nil, err
	}

	if err := prepareOutputDir(outputDir); err != nil {
		return nil, err
	}

	report := &GenerationReport{
		TotalPlanned: len(plan),
		Manifest:     NewManifest(seedCfg.Seed),
	}

	e.logger.Info("Generation started: run=%s, invocations=%d, output=%s",
		report.Manifest.RunID, len(plan), outputDir)

	for _, inv := range plan {
		select {
		case <-ctx.Done():
			invErr := e.invocationError(inv, ErrGenerationFailed.WithCause(ctx.Err()))
			report.FailedInvocation = invErr
			return report, invErr.Error
		default:
		}

		caseStart := time.Now()
		entry, err := e.runInvocation(inv, cfg.Generation, outputDir)
		e.performanceMonitor.RecordCase(err == nil, time.Since(caseStart))

		if err != nil {
			invErr := e.invocationError(inv, err)
			e.logger.Error("Generation aborted: %v", invErr.Error)
			report.FailedInvocation = invErr
			return report, invErr.Error
		}

		report.Manifest.Append(entry)
		report.Completed++
		report.BytesWritten += entry.InputBytes + entry.AnswerBytes
	}

	e.logger.Info("Generation finished: run=%s, cases=%d, bytes=%d, checksum=%s, duration=%v",
		report.Manifest.RunID, report.Completed, report.BytesWritten,
		report.Manifest.Checksum(), time.Since(start))

	if err := e.publishManifest(ctx, cfg, report.Manifest); err != nil {
		return report, err
	}

	return report, nil
}

// ensureConfig loads configuration if needed and verifies the root seed.
func (e *Engine) ensureConfig() (*SeedConfig, error) {
	if e.collection == nil || e.collection.Len() == 0 {
		return nil, ErrEmptyCollection
	}
	return e.configManager.EnsureSeed()
}

// runInvocation executes one invocation's full lifecycle: seeded builder
// call, input write, answer write (with read access to the written input),
// validation, optional description. Returns the manifest entry on success.
func (e *Engine) runInvocation(inv Invocation, gcfg *GenerationConfig, outputDir string) (ManifestEntry, error) {
	e.logger.Debug("Generating test case %q (seed=%x%x)", inv.Slug, inv.Seed.Hi, inv.Seed.Lo)

	inPath := filepath.Join(outputDir, inv.Slug+gcfg.InputExtension)
	ansPath := filepath.Join(outputDir, inv.Slug+gcfg.AnswerExtension)
	descPath := filepath.Join(outputDir, inv.Slug+gcfg.DescExtension)

	tc, err := e.buildTestCase(inv)
	if err != nil {
		return ManifestEntry{}, err
	}

	inBytes, err := e.writeFile(inPath, func(f *os.File) error {
		return tc.WriteInput(f)
	})
	if err != nil {
		e.cleanupInvocation(inPath, ansPath, descPath)
		return ManifestEntry{}, ErrWriteFailed.WithDetails(inPath).WithCause(err)
	}

	ansBytes, err := e.writeFile(ansPath, func(f *os.File) error {
		in, openErr := os.Open(inPath)
		if openErr != nil {
			return openErr
		}
		defer in.Close()
		return tc.WriteAnswer(f, in)
	})
	if err != nil {
		e.cleanupInvocation(inPath, ansPath, descPath)
		return ManifestEntry{}, ErrWriteFailed.WithDetails(ansPath).WithCause(err)
	}

	// Validation runs after both writes so the hook can inspect the
	// written input file rather than only in-memory state.
	if err := tc.Validate(inPath); err != nil {
		e.cleanupInvocation(inPath, ansPath, descPath)
		return ManifestEntry{}, ErrValidationFailed.WithCause(err)
	}

	if gcfg.WriteDesc && inv.Entry.Description() != "" {
		_, err := e.writeFile(descPath, func(f *os.File) error {
			_, werr := fmt.Fprintln(f, inv.Entry.Description())
			return werr
		})
		if err != nil {
			e.cleanupInvocation(inPath, ansPath, descPath)
			return ManifestEntry{}, ErrWriteFailed.WithDetails(descPath).WithCause(err)
		}
	}

	inSum, err := fileSHA256(inPath)
	if err != nil {
		return ManifestEntry{}, ErrWriteFailed.WithDetails(inPath).WithCause(err)
	}
	ansSum, err := fileSHA256(ansPath)
	if err != nil {
		return ManifestEntry{}, ErrWriteFailed.WithDetails(ansPath).WithCause(err)
	}

	e.logger.Debug("Generated %q: input=%dB, answer=%dB", inv.Slug, inBytes, ansBytes)

	return ManifestEntry{
		Slug:         inv.Slug,
		Generator:    inv.Entry.Name(),
		SeedHi:       inv.Seed.Hi,
		SeedLo:       inv.Seed.Lo,
		InputSHA256:  inSum,
		AnswerSHA256: ansSum,
		InputBytes:   inBytes,
		AnswerBytes:  ansBytes,
	}, nil
}

// buildTestCase calls the builder with a fresh deterministic random source.
// A panicking builder is converted into a generation error so the run still
// aborts with the identifying invocation.
func (e *Engine) buildTestCase(inv Invocation) (tc TestCase, err error) {
	defer func() {
		if r := recover(); r != nil {
			tc = nil
			err = ErrGenerationFailed.WithDetails(fmt.Sprintf("builder panicked: %v", r))
		}
	}()

	tc, err = inv.Entry.builder(NewRand(inv.Seed), inv.Assignment)
	if err != nil {
		return nil, ErrGenerationFailed.WithCause(err)
	}
	if tc == nil {
		return nil, ErrNilTestCase
	}
	return tc, nil
}

// writeFile creates the file, runs the write callback and returns the
// number of bytes written.
func (e *Engine) writeFile(path string, write func(f *os.File) error) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, OutputFilePerm)
	if err != nil {
		return 0, err
	}

	if err := write(f); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	e.performanceMonitor.RecordWrite(info.Size())
	return info.Size(), nil
}

// cleanupInvocation removes the partial files of a failed invocation.
// Best-effort only: generation is not transactional and a leftover file is
// acceptable, a silently continued run is not.
func (e *Engine) cleanupInvocation(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			e.logger.Error("Failed to remove partial file %s: %v", p, err)
		}
	}
}

// invocationError wraps an invocation failure with its identifying context.
func (e *Engine) invocationError(inv Invocation, cause error) *InvocationError {
	genErr, ok := cause.(*GenError)
	if !ok {
		genErr = ErrGenerationFailed.WithCause(cause)
	}
	genErr = genErr.
		WithInvocation(inv.Entry.Name(), inv.Assignment.Describe(), inv.RepeatIndex).
		WithSlug(inv.Slug)

	return &InvocationError{
		Generator:   inv.Entry.Name(),
		Params:      inv.Assignment.Describe(),
		RepeatIndex: inv.RepeatIndex,
		Slug:        inv.Slug,
		ErrorMsg:    genErr.Error(),
		Error:       genErr,
	}
}

// publishManifest ships the manifest through the configured publisher.
func (e *Engine) publishManifest(ctx context.Context, cfg *Config, m *Manifest) error {
	if e.publisher == nil || cfg.Manifest == nil || !cfg.Manifest.Enabled {
		return nil
	}

	err := e.publisher.Publish(ctx, m)
	e.performanceMonitor.RecordManifestPublish(err == nil)
	if err != nil {
		e.logger.Error("Manifest publish failed for run %s: %v", m.RunID, err)
		return err
	}
	return nil
}
