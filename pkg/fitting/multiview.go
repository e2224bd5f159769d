package fitting

import (
	"context"
	"fmt"
	"log"
	"time"
)

// View names one angle of a multiview set.
type View string

const (
	ViewFront View = "front"
	ViewSide  View = "side"
	ViewBack  View = "back"
)

// allViews in presentation order.
var allViews = []View{ViewFront, ViewSide, ViewBack}

// MultiviewClass is the artifact class for one view's images.
func MultiviewClass(v View) string {
	return "multiview_person_" + string(v)
}

// MultiviewSet describes the latest generated set of person views. The
// front view is a stored copy of the source image; side and back are
// generated. Views that failed carry their failure detail instead of a
// filename, so a partially generated set is still usable.
type MultiviewSet struct {
	Source    string          `json:"source"`
	Views     map[View]string `json:"views"`
	Failures  map[View]string `json:"failures,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GenerateMultiview builds front/side/back views from a stored front-view
// reference image. Side and back each take one rate-limited generation
// call; between them the limiter is waited out rather than rejected, since
// the whole operation is explicitly long-running. Per-view generation
// failures degrade the set; a set where neither side nor back could be
// generated is an error. The returned set becomes the session's latest and
// feeds BatchTryOn.
func (s *Service) GenerateMultiview(ctx context.Context, personFilename string) (MultiviewSet, error) {
	person, err := s.readArtifact(ctx, personFilename)
	if err != nil {
		return MultiviewSet{}, err
	}

	set := MultiviewSet{
		Source:    personFilename,
		Views:     make(map[View]string),
		Failures:  make(map[View]string),
		CreatedAt: time.Now(),
	}

	// Front view is a copy of the source, no generation call needed.
	if ver, err := s.namer.Save(ctx, MultiviewClass(ViewFront), "png", person); err != nil {
		set.Failures[ViewFront] = err.Error()
	} else {
		set.Views[ViewFront] = ver.Filename
	}

	for _, view := range []View{ViewSide, ViewBack} {
		if err := s.limiter.Acquire(ctx); err != nil {
			return set, err
		}
		out, err := s.generate(ctx, "multiview", multiviewPrompt(view), person)
		if err != nil {
			log.Printf("fitting: multiview %s view failed: %v", view, err)
			set.Failures[view] = err.Error()
			continue
		}
		ver, err := s.namer.Save(ctx, MultiviewClass(view), "png", out)
		if err != nil {
			set.Failures[view] = err.Error()
			continue
		}
		set.Views[view] = ver.Filename
	}

	if set.Views[ViewSide] == "" && set.Views[ViewBack] == "" {
		return set, &GenerationError{cause: fmt.Errorf("no views could be generated from %s", personFilename)}
	}
	if len(set.Failures) == 0 {
		set.Failures = nil
	}

	s.mvMu.Lock()
	s.mvLatest = &set
	s.mvMu.Unlock()
	return set, nil
}

// LatestMultiview returns the session's latest multiview set, if any.
func (s *Service) LatestMultiview() (MultiviewSet, bool) {
	s.mvMu.RLock()
	defer s.mvMu.RUnlock()
	if s.mvLatest == nil {
		return MultiviewSet{}, false
	}
	return *s.mvLatest, true
}

// BatchItem is the per-view outcome of a batch try-on.
type BatchItem struct {
	View   View         `json:"view"`
	Result *TryOnResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// BatchResult reports one batch multiview try-on.
type BatchResult struct {
	Garment   string      `json:"garment"`
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
}

// BatchTryOn runs the garment over every available view of the latest
// multiview set. Unlike the single VirtualTryOn, the limiter is waited out
// between items instead of rejecting, so one invocation yields the whole
// set. Per-view failures are reported individually and do not stop later
// views; a cancelled context does.
func (s *Service) BatchTryOn(ctx context.Context, garmentName string, gt GarmentType) (BatchResult, error) {
	set, ok := s.LatestMultiview()
	if !ok {
		return BatchResult{}, ErrNoMultiviewSet
	}
	garment, err := s.resolveGarment(ctx, garmentName)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Garment: garmentName}
	for _, view := range allViews {
		personName := set.Views[view]
		if personName == "" {
			continue
		}
		item := BatchItem{View: view}

		person, err := s.readArtifact(ctx, personName)
		if err != nil {
			item.Error = err.Error()
			result.Items = append(result.Items, item)
			continue
		}
		if err := s.limiter.Acquire(ctx); err != nil {
			return result, err
		}
		instructions := fmt.Sprintf("This is the %s view of the person.", view)
		tr, err := s.tryOnOnce(ctx, personName, person, garmentName, garment, gt, instructions, string(view))
		if err != nil {
			if ctx.Err() != nil {
				return result, err
			}
			item.Error = err.Error()
		} else {
			item.Result = &tr
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
