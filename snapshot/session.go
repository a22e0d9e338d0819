// Package snapshot assembles a point-in-time capture of a process's readable
// memory. A Session enumerates the regions once, selects the ones to read and
// streams each successfully read region to a sink in ascending address order.
// Failures on individual regions are recorded and skipped; only failing to
// enumerate, to open the memory image or to use the sink ends a session.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/uuid"
)

// Result is everything a finished session knows about its capture.
type Result struct {
	SessionID  uuid.UUID                 `json:"session_id"`
	PID        process.ProcessID         `json:"pid"`
	Enumerated int                       `json:"enumerated"`
	Selected   []memory_map.MemoryRegion `json:"-"`
	Outcomes   []Outcome                 `json:"outcomes"` // index-aligned with Selected
	Summary    Summary                   `json:"summary"`
}

// Session captures the memory of one process, once.
type Session struct {
	ID  uuid.UUID
	PID process.ProcessID

	opts   Options
	source RegionSource
	open   ImageOpener
	log    *logger.Logger
}

// New creates a Session for pid. The region source and image opener are the
// two pseudo-files of the target; both are required.
func New(pid process.ProcessID, opts Options, source RegionSource, open ImageOpener) (*Session, error) {
	if err := pid.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.New("snapshot: nil region source")
	}
	if open == nil {
		return nil, errors.New("snapshot: nil image opener")
	}
	if opts.Selector == nil {
		opts.Selector = memory_map.ReadAnywhere
	}

	id := uuid.New()
	return &Session{
		ID:     id,
		PID:    pid,
		opts:   opts,
		source: source,
		open:   open,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("memsnap-%d", pid))),
	}, nil
}

// Enumerate reads the target's current memory map.
func (s *Session) Enumerate() ([]memory_map.MemoryRegion, error) {
	regions, err := s.source.ReadMemoryMap(s.PID)
	if err != nil {
		if !errors.Is(err, process.ErrDescriptorUnavailable) {
			err = process.NewFatal(process.ErrDescriptorUnavailable, s.PID, s.mapsPath(), err)
		}
		return nil, err
	}
	return regions, nil
}

func (s *Session) mapsPath() string {
	if l, ok := s.source.(MapsLocator); ok {
		return l.MapsPath(s.PID)
	}
	return process.DefaultProcFS.MapsPath(s.PID)
}

// Capture enumerates, selects and assembles in one pass.
func (s *Session) Capture(openSink sink.Opener) (*Result, error) {
	regions, err := s.Enumerate()
	if err != nil {
		return nil, err
	}

	selected := memory_map.Select(regions, s.opts.Selector)
	s.log.Infoln("Session", s.ID.String(), "enumerated", len(regions), "regions,", len(selected), "selected,",
		process.ProcessMemorySize(memory_map.TotalSize(selected)).String(), "to read")

	res, err := s.Assemble(selected, openSink)
	if err != nil {
		return nil, err
	}
	res.Enumerated = len(regions)
	return res, nil
}

// Assemble reads the given regions, in order, into a sink obtained from
// openSink. The image is opened before the sink, so a target that cannot be
// read never produces an artifact. Both are closed on every return path.
func (s *Session) Assemble(selected []memory_map.MemoryRegion, openSink sink.Opener) (res *Result, err error) {
	img, err := s.open(s.PID)
	if err != nil {
		if !errors.Is(err, process.ErrMemoryImageUnavailable) {
			err = process.NewFatal(process.ErrMemoryImageUnavailable, s.PID, process.DefaultProcFS.MemPath(s.PID), err)
		}
		return nil, err
	}
	defer img.Close()

	out, err := openSink()
	if err != nil {
		if !errors.Is(err, process.ErrOutputSinkUnavailable) {
			err = process.NewFatal(process.ErrOutputSinkUnavailable, s.PID, "output", err)
		}
		return nil, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			res, err = nil, process.NewFatal(process.ErrOutputSinkUnavailable, s.PID, "output", cerr)
		}
	}()

	outcomes := make([]Outcome, 0, len(selected))
	for _, region := range selected {
		outcome, data := s.readRegion(img, region)

		if len(data) > 0 {
			if err := out.Append(region, data); err != nil {
				return nil, process.NewFatal(process.ErrOutputSinkUnavailable, s.PID, "output", err)
			}
			outcome.Appended = uint64(len(data))
		}

		if outcome.Err != nil {
			outcome.Reason = outcome.Err.Error()
			s.log.Debugln("Region", region.String(), outcome.String())
		}
		outcomes = append(outcomes, outcome)
	}

	res = &Result{
		SessionID: s.ID,
		PID:       s.PID,
		Selected:  selected,
		Outcomes:  outcomes,
		Summary:   summarize(outcomes),
	}

	s.log.Infoln("Session", s.ID.String(), "done:", res.Summary.Succeeded, "regions captured,",
		res.Summary.Failed, "failed,", process.ProcessMemorySize(res.Summary.BytesCaptured).String(), "written")

	return res, nil
}

// readRegion makes the single attempt at one region. The returned bytes are
// what should be appended to the artifact, nil if nothing should.
func (s *Session) readRegion(img MemoryImage, region memory_map.MemoryRegion) (Outcome, []byte) {
	size := region.Size()
	outcome := Outcome{Region: region, Requested: size}

	if limit := s.sizeLimit(); size > limit {
		outcome.Status = StatusAllocationFailure
		outcome.Err = fmt.Errorf("%w: region of %d bytes exceeds limit of %d bytes", process.ErrAllocationFailure, size, limit)
		s.log.Warn("Skipping region ", region.String(), " of ", process.ProcessMemorySize(size).String())
		return outcome, nil
	}

	buf := make([]byte, size)

	if err := img.Seek(process.ProcessMemoryAddress(region.Start)); err != nil {
		outcome.Status = StatusSeekFailure
		outcome.Err = fmt.Errorf("%w at 0x%x: %v", process.ErrSeekFailure, region.Start, err)
		return outcome, nil
	}

	n, err := io.ReadFull(img, buf)
	outcome.Read = uint64(n)
	if n < len(buf) {
		outcome.Status = StatusShortRead
		outcome.Err = fmt.Errorf("%w: %d of %d bytes at 0x%x: %v", process.ErrShortRead, n, size, region.Start, err)
		if s.opts.PartialReads == KeepPartial {
			return outcome, buf[:n]
		}
		return outcome, nil
	}

	outcome.Status = StatusSuccess
	return outcome, buf
}

func (s *Session) sizeLimit() uint64 {
	limit := uint64(DefaultMaxRegionSize)
	if s.opts.MaxRegionSize > 0 {
		limit = uint64(s.opts.MaxRegionSize)
	}
	return min(limit, uint64(math.MaxInt))
}
