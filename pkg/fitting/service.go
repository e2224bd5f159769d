package fitting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/wearlab/tryon-agent/pkg/artifacts"
	"github.com/wearlab/tryon-agent/pkg/catalog"
	"github.com/wearlab/tryon-agent/pkg/imagegen"
	"github.com/wearlab/tryon-agent/pkg/imaging"
	"github.com/wearlab/tryon-agent/pkg/metrics"
	"github.com/wearlab/tryon-agent/pkg/ratelimit"
)

// Default artifact class prefixes.
const (
	DefaultReferenceClass = "reference_image"
	DefaultResultClass    = "tryon_result"
)

// Deps carries every collaborator the Service needs. All dependencies are
// explicit so the service can be assembled once at startup and tested with
// fakes. Catalog and Metrics are optional; the rest are required.
type Deps struct {
	Store     artifacts.Store
	Namer     *artifacts.Namer
	Catalog   *catalog.Catalog
	Limiter   *ratelimit.Limiter
	Generator imagegen.Generator
	Validator imaging.Validator
	Metrics   metrics.Recorder

	// ReferenceClass and ResultClass override the artifact class prefixes.
	ReferenceClass string
	ResultClass    string

	// GenerationTimeout bounds each external generation call. Zero leaves
	// only the caller's context deadline in force.
	GenerationTimeout time.Duration
}

// Service is the try-on orchestrator. Safe for concurrent use: its own state
// (records, multiview set) is lock-guarded and every collaborator it holds
// is concurrency-safe itself.
type Service struct {
	store      artifacts.Store
	namer      *artifacts.Namer
	catalog    *catalog.Catalog
	limiter    *ratelimit.Limiter
	generator  imagegen.Generator
	validator  imaging.Validator
	metrics    metrics.Recorder
	refClass   string
	resClass   string
	genTimeout time.Duration

	records *recordBook

	mvMu     sync.RWMutex
	mvLatest *MultiviewSet
}

// New validates deps and builds a Service.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("fitting: Store is required")
	case deps.Namer == nil:
		return nil, errors.New("fitting: Namer is required")
	case deps.Limiter == nil:
		return nil, errors.New("fitting: Limiter is required")
	case deps.Generator == nil:
		return nil, errors.New("fitting: Generator is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop{}
	}
	if deps.ReferenceClass == "" {
		deps.ReferenceClass = DefaultReferenceClass
	}
	if deps.ResultClass == "" {
		deps.ResultClass = DefaultResultClass
	}
	return &Service{
		store:      deps.Store,
		namer:      deps.Namer,
		catalog:    deps.Catalog,
		limiter:    deps.Limiter,
		generator:  deps.Generator,
		validator:  deps.Validator,
		metrics:    deps.Metrics,
		refClass:   deps.ReferenceClass,
		resClass:   deps.ResultClass,
		genTimeout: deps.GenerationTimeout,
		records:    newRecordBook(),
	}, nil
}

// ReferenceClass returns the configured reference-image class prefix.
func (s *Service) ReferenceClass() string { return s.refClass }

// ResultClass returns the configured try-on-result class prefix.
func (s *Service) ResultClass() string { return s.resClass }

// --- artifact resolution ---

// readArtifact loads name from the store, translating a miss into
// NotFoundError.
func (s *Service) readArtifact(ctx context.Context, name string) ([]byte, error) {
	data, err := s.store.Read(ctx, name)
	if errors.Is(err, artifacts.ErrNotFound) {
		return nil, &NotFoundError{Names: []string{name}}
	}
	return data, err
}

// resolveGarment loads garment bytes from the artifact store first (an
// uploaded garment image), then from the catalog ("catalog/<file>", bare
// filename, or id).
func (s *Service) resolveGarment(ctx context.Context, name string) ([]byte, error) {
	data, err := s.store.Read(ctx, name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, artifacts.ErrNotFound) && !errors.Is(err, artifacts.ErrInvalidName) {
		return nil, err
	}
	if s.catalog != nil {
		if entry, ok := s.catalog.Get(name); ok {
			return s.catalog.ReadImage(entry)
		}
	}
	return nil, &NotFoundError{Names: []string{name}}
}

// --- generation ---

// generate runs one external generation call under the configured timeout
// and maps failures to the error taxonomy. The caller has already acquired
// the rate-limit slot; it is consumed whatever happens here.
func (s *Service) generate(ctx context.Context, kind, prompt string, images ...[]byte) ([]byte, error) {
	gctx := ctx
	if s.genTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}
	start := time.Now()
	out, err := s.generator.Generate(gctx, prompt, images...)
	seconds := time.Since(start).Seconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(gctx.Err(), context.DeadlineExceeded) {
			s.metrics.ObserveGeneration(kind, "timeout", seconds)
			return nil, &TimeoutError{cause: err}
		}
		s.metrics.ObserveGeneration(kind, "error", seconds)
		return nil, &GenerationError{cause: err}
	}
	s.metrics.ObserveGeneration(kind, "ok", seconds)
	return out, nil
}

// --- virtual try-on ---

// TryOnParams are the arguments of one try-on invocation.
type TryOnParams struct {
	PersonImage  string
	Garment      string
	GarmentType  GarmentType
	Instructions string
}

// TryOnResult pairs the stored result artifact with its record.
type TryOnResult struct {
	Result artifacts.Version `json:"result"`
	Record TryOnRecord       `json:"record"`
}

// VirtualTryOn runs one guarded try-on: resolve both images, take the rate
// gate (strict reject, never waiting), call the generator, persist the
// result under the next version, and record the linkage. The acquired slot
// is not returned on generation failure.
func (s *Service) VirtualTryOn(ctx context.Context, p TryOnParams) (TryOnResult, error) {
	person, err := s.readArtifact(ctx, p.PersonImage)
	if err != nil {
		return TryOnResult{}, err
	}
	garment, err := s.resolveGarment(ctx, p.Garment)
	if err != nil {
		return TryOnResult{}, err
	}

	if d := s.limiter.TryAcquire(); !d.Accepted {
		s.metrics.IncRateLimited("virtual_tryon")
		return TryOnResult{}, &RateLimitedError{Wait: d.Wait}
	}
	return s.tryOnOnce(ctx, p.PersonImage, person, p.Garment, garment, p.GarmentType, p.Instructions, "")
}

// tryOnOnce performs the generate-persist-record tail of a try-on. The rate
// slot must already be held.
func (s *Service) tryOnOnce(ctx context.Context, personName string, person []byte, garmentName string, garment []byte, gt GarmentType, instructions, view string) (TryOnResult, error) {
	out, err := s.generate(ctx, "tryon", tryOnPrompt(gt, instructions), person, garment)
	if err != nil {
		return TryOnResult{}, err
	}
	ver, err := s.namer.Save(ctx, s.resClass, "png", out)
	if err != nil {
		return TryOnResult{}, fmt.Errorf("persist try-on result: %w", err)
	}
	rec := s.records.add(TryOnRecord{
		ResultFilename: ver.Filename,
		ResultVersion:  ver.Version,
		PersonImage:    personName,
		Garment:        garmentName,
		View:           view,
		CreatedAt:      ver.CreatedAt,
	})
	log.Printf("fitting: try-on %s (person=%s garment=%s)", ver.Filename, personName, garmentName)
	return TryOnResult{Result: ver, Record: rec}, nil
}

// --- intake ---

// IntakeResult reports one accepted upload.
type IntakeResult struct {
	Saved artifacts.Version `json:"saved"`
	Ratio imaging.Report    `json:"ratio"`
}

// Intake validates uploaded image bytes and stores them as the next
// reference-image version. The ratio check is advisory; only undecodable
// bytes reject the upload.
func (s *Service) Intake(ctx context.Context, data []byte) (IntakeResult, error) {
	report, err := s.validator.Validate(data)
	if err != nil {
		return IntakeResult{}, err
	}
	ext := report.Format
	if ext == "jpeg" {
		ext = "jpg"
	}
	ver, err := s.namer.Save(ctx, s.refClass, ext, data)
	if err != nil {
		return IntakeResult{}, fmt.Errorf("persist reference image: %w", err)
	}
	log.Printf("fitting: intake %s (%dx%d %s)", ver.Filename, report.WidthPx, report.HeightPx, report.Classification)
	return IntakeResult{Saved: ver, Ratio: report}, nil
}

// --- listing ---

// ReferenceList is the structured answer to "what have I uploaded".
type ReferenceList struct {
	Images []artifacts.Version `json:"images"`
	Total  int                 `json:"total"`
	// Ready reports whether a try-on can start: at least one reference
	// image plus at least one selectable garment.
	Ready bool `json:"ready"`
}

// ListReferences enumerates the stored reference images.
func (s *Service) ListReferences(ctx context.Context) (ReferenceList, error) {
	versions, err := s.namer.List(ctx, s.refClass)
	if err != nil {
		return ReferenceList{}, err
	}
	garments := s.catalog != nil && s.catalog.Len() > 0
	return ReferenceList{Images: versions, Total: len(versions), Ready: len(versions) > 0 && garments}, nil
}

// ResultEntry is one try-on result with its linkage, when known. Person and
// garment stay empty for artifacts whose record was lost (for example after
// a process restart with a persistent store); that is a lookup miss, not an
// error.
type ResultEntry struct {
	artifacts.Version
	PersonImage string `json:"personImage,omitempty"`
	Garment     string `json:"garment,omitempty"`
}

// ResultList is the structured answer to "what results exist".
type ResultList struct {
	Results []ResultEntry `json:"results"`
	Total   int           `json:"total"`
}

// ListResults enumerates stored try-on results in ascending version order,
// joined with their records where present.
func (s *Service) ListResults(ctx context.Context) (ResultList, error) {
	versions, err := s.namer.List(ctx, s.resClass)
	if err != nil {
		return ResultList{}, err
	}
	out := make([]ResultEntry, 0, len(versions))
	for _, v := range versions {
		entry := ResultEntry{Version: v}
		if rec, ok := s.records.get(v.Filename); ok {
			entry.PersonImage = rec.PersonImage
			entry.Garment = rec.Garment
		}
		out = append(out, entry)
	}
	return ResultList{Results: out, Total: len(out)}, nil
}

// --- clearing ---

// ClearReferences deletes every reference image and returns the count.
func (s *Service) ClearReferences(ctx context.Context) (int, error) {
	return s.namer.ClearAll(ctx, s.refClass)
}

// ClearResults deletes every try-on result plus the records attached to
// them, and returns the artifact count.
func (s *Service) ClearResults(ctx context.Context) (int, error) {
	n, err := s.namer.ClearAll(ctx, s.resClass)
	if err != nil {
		return n, err
	}
	s.records.removeClass(s.resClass)
	return n, nil
}

// --- comparison ---

// Compare resolves the given result filenames to their records, ordered by
// ascending version. Any unresolvable name fails the whole call with a
// NotFoundError listing every missing name; nothing is silently skipped.
func (s *Service) Compare(resultFilenames []string) ([]TryOnRecord, error) {
	var out []TryOnRecord
	var missing []string
	for _, name := range resultFilenames {
		rec, ok := s.records.get(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out = append(out, rec)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Names: missing}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultVersion < out[j].ResultVersion })
	return out, nil
}

// GarmentGroup aggregates the results produced with one garment.
type GarmentGroup struct {
	Garment string   `json:"garment"`
	Count   int      `json:"count"`
	Results []string `json:"results"`
}

// Summary is the structured overview of all try-on records in the session.
type Summary struct {
	Total      int            `json:"total"`
	PerGarment []GarmentGroup `json:"perGarment"`
	Latest     *TryOnRecord   `json:"latest,omitempty"`
}

// Summarize builds the comparison overview: total count, grouping by
// garment, and the latest record. Judgment about which result looks best is
// deliberately left to the conversational layer.
func (s *Service) Summarize() Summary {
	records := s.records.all()
	sum := Summary{Total: len(records)}
	if len(records) == 0 {
		return sum
	}
	latest := records[len(records)-1]
	sum.Latest = &latest

	byGarment := make(map[string]*GarmentGroup)
	var order []string
	for _, rec := range records {
		g, ok := byGarment[rec.Garment]
		if !ok {
			g = &GarmentGroup{Garment: rec.Garment}
			byGarment[rec.Garment] = g
			order = append(order, rec.Garment)
		}
		g.Count++
		g.Results = append(g.Results, rec.ResultFilename)
	}
	for _, name := range order {
		sum.PerGarment = append(sum.PerGarment, *byGarment[name])
	}
	return sum
}

// --- ratio check ---

// RatioCheck reports the aspect-ratio verdict for one stored image.
type RatioCheck struct {
	Filename string         `json:"filename"`
	Report   imaging.Report `json:"report"`
}

// CheckRatio runs the validator against a stored artifact or catalog entry.
func (s *Service) CheckRatio(ctx context.Context, filename string) (RatioCheck, error) {
	data, err := s.resolveGarment(ctx, filename)
	if err != nil {
		return RatioCheck{}, err
	}
	report, err := s.validator.Validate(data)
	if err != nil {
		return RatioCheck{}, err
	}
	return RatioCheck{Filename: filename, Report: report}, nil
}

// RateLimitStatus exposes the limiter snapshot for the status tool.
func (s *Service) RateLimitStatus() ratelimit.Status {
	return s.limiter.Status()
}
