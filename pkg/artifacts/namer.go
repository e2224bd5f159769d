package artifacts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Namer hands out version numbers per artifact class and persists new
// versions. The next number for a class is always derived from a fresh scan
// of the store, never from a cached counter, so artifacts deleted behind the
// namer's back are tolerated.
//
// Scan-then-write is serialized with one mutex per class: allocations for
// different classes proceed in parallel, allocations within a class never
// race.
type Namer struct {
	store Store

	mu      sync.Mutex
	classes map[string]*sync.Mutex
}

// NewNamer returns a Namer over store.
func NewNamer(store Store) *Namer {
	return &Namer{store: store, classes: make(map[string]*sync.Mutex)}
}

func (n *Namer) classLock(class string) *sync.Mutex {
	n.mu.Lock()
	defer n.mu.Unlock()
	l, ok := n.classes[class]
	if !ok {
		l = &sync.Mutex{}
		n.classes[class] = l
	}
	return l
}

func validClass(class string) bool {
	return class != "" && !strings.ContainsAny(class, `/\.`)
}

// scan returns the existing versions of class in ascending order. Names
// whose version segment is malformed are skipped.
func (n *Namer) scan(ctx context.Context, class string) ([]Version, error) {
	infos, err := n.store.List(ctx, class+"_v")
	if err != nil {
		return nil, err
	}
	var out []Version
	for _, info := range infos {
		c, v, _, ok := ParseFilename(info.Name)
		if !ok || c != class {
			continue
		}
		out = append(out, Version{
			Class:     class,
			Version:   v,
			Filename:  info.Name,
			SizeBytes: info.Size,
			CreatedAt: info.ModTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// NextVersion reports the number the next Save for class would use. Purely
// advisory: nothing is reserved until Save writes the artifact.
func (n *Namer) NextVersion(ctx context.Context, class string) (int, error) {
	if !validClass(class) {
		return 0, fmt.Errorf("%q: invalid artifact class", class)
	}
	lock := n.classLock(class)
	lock.Lock()
	defer lock.Unlock()
	versions, err := n.scan(ctx, class)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", class, err)
	}
	if len(versions) == 0 {
		return 1, nil
	}
	return versions[len(versions)-1].Version + 1, nil
}

// Save allocates the next version of class and writes data under the derived
// filename in one serialized step.
func (n *Namer) Save(ctx context.Context, class, ext string, data []byte) (Version, error) {
	if !validClass(class) {
		return Version{}, fmt.Errorf("%q: invalid artifact class", class)
	}
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		return Version{}, fmt.Errorf("%q: invalid artifact extension", ext)
	}
	lock := n.classLock(class)
	lock.Lock()
	defer lock.Unlock()

	versions, err := n.scan(ctx, class)
	if err != nil {
		return Version{}, fmt.Errorf("scan %s: %w", class, err)
	}
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1].Version + 1
	}
	name := Filename(class, next, ext)
	if err := n.store.Write(ctx, name, data); err != nil {
		return Version{}, fmt.Errorf("save %s: %w", name, err)
	}
	return Version{
		Class:     class,
		Version:   next,
		Filename:  name,
		SizeBytes: int64(len(data)),
		CreatedAt: time.Now(),
	}, nil
}

// List returns the stored versions of class in ascending version order.
// An empty class yields an empty slice, not an error.
func (n *Namer) List(ctx context.Context, class string) ([]Version, error) {
	if !validClass(class) {
		return nil, fmt.Errorf("%q: invalid artifact class", class)
	}
	versions, err := n.scan(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", class, err)
	}
	return versions, nil
}

// Latest returns the highest stored version of class. ok is false when the
// class has no artifacts; that is not an error.
func (n *Namer) Latest(ctx context.Context, class string) (Version, bool, error) {
	versions, err := n.List(ctx, class)
	if err != nil {
		return Version{}, false, err
	}
	if len(versions) == 0 {
		return Version{}, false, nil
	}
	return versions[len(versions)-1], true, nil
}

// ClearAll deletes every artifact of class and reports how many were
// removed. Clearing an empty class returns 0. The class counter restarts at
// 1 afterwards because scans find nothing.
func (n *Namer) ClearAll(ctx context.Context, class string) (int, error) {
	if !validClass(class) {
		return 0, fmt.Errorf("%q: invalid artifact class", class)
	}
	lock := n.classLock(class)
	lock.Lock()
	defer lock.Unlock()

	versions, err := n.scan(ctx, class)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", class, err)
	}
	deleted := 0
	for _, v := range versions {
		ok, err := n.store.Delete(ctx, v.Filename)
		if err != nil {
			return deleted, fmt.Errorf("clear %s: %w", class, err)
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}
