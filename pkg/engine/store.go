// Package engine holds named datasets for a recording session and executes
// declarative query requests against them, composing the interval algebra
// in pkg/observe.
package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/leowmjw/go-obs-query/pkg/observe"
)

// DatasetKind tags the two queryable dataset variants a Store can hold.
type DatasetKind string

const (
	KindPoints     DatasetKind = "points"
	KindContinuous DatasetKind = "continuous"
)

// DatasetInfo describes one stored dataset: its kind, element count and the
// content fingerprint of its arrays.
type DatasetInfo struct {
	Name        string      `json:"name"`
	Kind        DatasetKind `json:"kind"`
	Len         int         `json:"len"`
	Fingerprint string      `json:"fingerprint"`
}

type storedPoints struct {
	data        observe.PointData
	fingerprint uint64
}

type storedContinuous struct {
	data        observe.ContinuousData
	fingerprint uint64
}

// Store is an in-memory registry of named datasets. Datasets are immutable
// values, so the lock only guards the maps; queries can run concurrently.
type Store struct {
	mu         sync.RWMutex
	points     map[string]storedPoints
	continuous map[string]storedContinuous
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		points:     make(map[string]storedPoints),
		continuous: make(map[string]storedContinuous),
	}
}

// PutPoints stores a point dataset under name, replacing any dataset of
// either kind previously stored under it.
func (s *Store) PutPoints(name string, data observe.PointData) DatasetInfo {
	fp := fingerprintPoints(data)
	s.mu.Lock()
	delete(s.continuous, name)
	s.points[name] = storedPoints{data: data, fingerprint: fp}
	s.mu.Unlock()
	return DatasetInfo{Name: name, Kind: KindPoints, Len: data.Len(), Fingerprint: formatFingerprint(fp)}
}

// PutContinuous stores a continuous dataset under name, replacing any
// dataset of either kind previously stored under it.
func (s *Store) PutContinuous(name string, data observe.ContinuousData) DatasetInfo {
	fp := fingerprintContinuous(data)
	s.mu.Lock()
	delete(s.points, name)
	s.continuous[name] = storedContinuous{data: data, fingerprint: fp}
	s.mu.Unlock()
	return DatasetInfo{Name: name, Kind: KindContinuous, Len: data.Len(), Fingerprint: formatFingerprint(fp)}
}

// Points returns the point dataset stored under name.
func (s *Store) Points(name string) (observe.PointData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.points[name]
	return entry.data, ok
}

// Continuous returns the continuous dataset stored under name.
func (s *Store) Continuous(name string) (observe.ContinuousData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.continuous[name]
	return entry.data, ok
}

// Datasets lists every stored dataset, sorted by name.
func (s *Store) Datasets() []DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]DatasetInfo, 0, len(s.points)+len(s.continuous))
	for name, entry := range s.points {
		infos = append(infos, DatasetInfo{
			Name: name, Kind: KindPoints, Len: entry.data.Len(),
			Fingerprint: formatFingerprint(entry.fingerprint),
		})
	}
	for name, entry := range s.continuous {
		infos = append(infos, DatasetInfo{
			Name: name, Kind: KindContinuous, Len: entry.data.Len(),
			Fingerprint: formatFingerprint(entry.fingerprint),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// fingerprint identifies the exact array content of a dataset, so query
// results can state which version of the data produced them.
func fingerprintPoints(data observe.PointData) uint64 {
	d := xxhash.New()
	writeFloats(d, data.EventTimes())
	for _, row := range data.Marks() {
		writeFloats(d, row)
	}
	writeBounds(d, data.ObsIntervals().ToArray())
	return d.Sum64()
}

func fingerprintContinuous(data observe.ContinuousData) uint64 {
	d := xxhash.New()
	writeFloats(d, data.Timestamps())
	for _, row := range data.Samples() {
		writeFloats(d, row)
	}
	writeBounds(d, data.ObsIntervals().ToArray())
	return d.Sum64()
}

func writeFloats(d *xxhash.Digest, values []float64) {
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		d.Write(buf[:])
	}
}

func writeBounds(d *xxhash.Digest, bounds [][2]float64) {
	for _, b := range bounds {
		writeFloats(d, b[:])
	}
}

func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
