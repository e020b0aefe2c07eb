package consolidator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"politeia-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/consolidator")

// Config is supplied by the caller per invocation; none of it is derived
// from the scraped data.
type Config struct {
	// office the ingested elections fill
	Office Office
	// date the elections took place, YYYY-MM-DD
	ElectionDate string
	// date winners take office, YYYY-MM-DD
	TermStartDate string
}

func (c Config) validate() error {
	if !c.Office.TakesTerm() {
		return fmt.Errorf("unknown office id %d", int64(c.Office))
	}
	if c.ElectionDate == "" {
		return errors.New("election date is required")
	}
	if c.TermStartDate == "" {
		return errors.New("term start date is required")
	}
	return nil
}

// Report summarizes one pipeline run.
type Report struct {
	Created        map[tabular.Table]int
	RegionsMerged  int
	RegionsSkipped int
}

// writerSet holds one open append writer per table for the duration of a
// run and counts the rows it persists.
type writerSet struct {
	writers map[tabular.Table]*tabular.AppendWriter
	created map[tabular.Table]int
}

func newWriterSet(store tabular.Store) (*writerSet, error) {
	ws := &writerSet{
		writers: make(map[tabular.Table]*tabular.AppendWriter),
		created: make(map[tabular.Table]int),
	}
	for _, t := range tabular.All() {
		w, err := store.OpenAppend(t)
		if err != nil {
			ws.Close()
			return nil, err
		}
		ws.writers[t] = w
	}
	return ws, nil
}

func (ws *writerSet) Append(t tabular.Table, fields []string) error {
	err := ws.writers[t].Write(fields)
	if err != nil {
		return err
	}
	ws.created[t]++
	return nil
}

func (ws *writerSet) Close() error {
	var errlist []error
	for _, w := range ws.writers {
		if err := w.Close(); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// Pipeline consolidates scraped region batches into the eight tables,
// appending run after run. Construct one per run and Close it when done so
// buffered rows reach disk.
type Pipeline struct {
	cfg      Config
	writers  *writerSet
	alloc    *Allocator
	resolver *Resolver
	report   Report
	now      func() time.Time
}

func NewPipeline(store tabular.Store, cfg Config) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	alloc := NewAllocator(store)
	writers, err := newWriterSet(store)
	if err != nil {
		return nil, err
	}
	resolver, err := NewResolver(store, alloc, writers)
	if err != nil {
		writers.Close()
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		writers:  writers,
		alloc:    alloc,
		resolver: resolver,
		now:      time.Now,
	}, nil
}

func (p *Pipeline) Close() error {
	return p.writers.Close()
}

func (p *Pipeline) Report() Report {
	report := p.report
	report.Created = make(map[tabular.Table]int, len(p.writers.created))
	for t, n := range p.writers.created {
		report.Created[t] = n
	}
	return report
}

// IngestRegionFile ingests one region's scraped JSON file. A missing file
// is a warn-and-skip (the scrape may simply not have covered that region
// yet); a file that exists but does not parse aborts the run, a broken
// batch must not be partially committed.
func (p *Pipeline) IngestRegionFile(ctx context.Context, regionName, path string) (skipped bool, err error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.WarnContext(ctx, "region file not found, skipping", "region", regionName, "path", path)
		p.report.RegionsSkipped++
		return true, nil
	}
	if err != nil {
		return false, err
	}

	var batch []CommuneResult
	err = json.Unmarshal(raw, &batch)
	if err != nil {
		return false, fmt.Errorf("malformed batch %s: %w", path, err)
	}

	err = p.IngestRegion(ctx, regionName, batch)
	if err != nil {
		return false, err
	}
	return false, nil
}

// IngestRegion consolidates one batch of commune results under the named
// region. Batch order only determines identifier assignment order.
func (p *Pipeline) IngestRegion(ctx context.Context, regionName string, batch []CommuneResult) error {
	ctx, span := tracer.Start(ctx, "IngestRegion")
	span.SetAttributes(
		attribute.String("region", regionName),
		attribute.Int("communes", len(batch)),
	)
	defer span.End()

	regionID, created, err := p.resolver.Jurisdiction(regionName, JurisdictionRegion, 0, p.now())
	if err != nil {
		return err
	}
	if created {
		slog.InfoContext(ctx, "created region", "name", regionName, "id", regionID)
	}

	for _, commune := range batch {
		err := p.ingestCommune(ctx, regionID, commune)
		if err != nil {
			return fmt.Errorf("commune %q: %w", commune.Commune, err)
		}
	}

	p.report.RegionsMerged++
	slog.InfoContext(ctx, "merged region", "region", regionName, "communes", len(batch))
	return nil
}

func (p *Pipeline) ingestCommune(ctx context.Context, regionID int64, commune CommuneResult) error {
	now := p.now()
	stamp := Stamp(now)

	communeID, _, err := p.resolver.Jurisdiction(commune.Commune, JurisdictionCommune, regionID, now)
	if err != nil {
		return err
	}

	electionID, err := p.alloc.NextID(tabular.Elections)
	if err != nil {
		return err
	}
	err = p.writers.Append(tabular.Elections, Election{
		ID:             electionID,
		OfficeID:       p.cfg.Office,
		JurisdictionID: communeID,
		ElectionDate:   p.cfg.ElectionDate,
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
	}.Fields())
	if err != nil {
		return err
	}

	resultID, err := p.alloc.NextID(tabular.ElectionResults)
	if err != nil {
		return err
	}
	err = p.writers.Append(tabular.ElectionResults, ElectionResult{
		ID:                resultID,
		ElectionID:        electionID,
		JurisdictionID:    communeID,
		ValidVotes:        commune.Stats.ValidVotes,
		BlankVotes:        commune.Stats.BlankVotes,
		NullVotes:         commune.Stats.NullVotes,
		TotalVotes:        commune.Stats.TotalVotes,
		ParticipationRate: commune.Stats.ParticipationRate,
		CreatedAt:         stamp,
		UpdatedAt:         stamp,
	}.Fields())
	if err != nil {
		return err
	}

	for _, cand := range commune.Candidates {
		err := p.ingestCandidate(electionID, communeID, cand)
		if err != nil {
			return fmt.Errorf("candidate %q: %w", cand.Name, err)
		}
	}
	return nil
}

func (p *Pipeline) ingestCandidate(electionID, communeID int64, cand Candidate) error {
	now := p.now()
	stamp := Stamp(now)

	personID, _, err := p.resolver.Person(cand.Name, now)
	if err != nil {
		return err
	}
	partyID, _, err := p.resolver.Party(cand.Party, now)
	if err != nil {
		return err
	}

	candidacyID, err := p.alloc.NextID(tabular.Candidacies)
	if err != nil {
		return err
	}
	err = p.writers.Append(tabular.Candidacies, Candidacy{
		ID:         candidacyID,
		ElectionID: electionID,
		PersonID:   personID,
		PartyID:    partyID,
		Votes:      cand.Votes,
		VoteShare:  cand.Percentage,
		Elected:    cand.Elected,
		CreatedAt:  stamp,
		UpdatedAt:  stamp,
	}.Fields())
	if err != nil {
		return err
	}

	// membership is recorded for every candidacy, a term only for winners
	membershipID, err := p.alloc.NextID(tabular.PartyMemberships)
	if err != nil {
		return err
	}
	err = p.writers.Append(tabular.PartyMemberships, PartyMembership{
		ID:        membershipID,
		PersonID:  personID,
		PartyID:   partyID,
		StartedOn: p.cfg.ElectionDate,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}.Fields())
	if err != nil {
		return err
	}

	if cand.Elected && p.cfg.Office.TakesTerm() {
		termID, err := p.alloc.NextID(tabular.OfficeTerms)
		if err != nil {
			return err
		}
		err = p.writers.Append(tabular.OfficeTerms, OfficeTerm{
			ID:             termID,
			PersonID:       personID,
			OfficeID:       p.cfg.Office,
			JurisdictionID: communeID,
			StartedOn:      p.cfg.TermStartDate,
			Status:         TermStatusActive,
			CreatedAt:      stamp,
			UpdatedAt:      stamp,
		}.Fields())
		if err != nil {
			return err
		}
	}
	return nil
}
