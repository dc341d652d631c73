package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/domain/playername"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
)

type fakeLeagueRepo struct {
	startTimes []time.Time
	missing    []time.Time

	ingestedEntries [][]ranking.LeagueEntry
	ingestedNames   [][]playername.Record
	marked          []time.Time
	ingestErr       error
	markErr         error
}

func (f *fakeLeagueRepo) IngestWindow(_ context.Context, entries []ranking.LeagueEntry, names []playername.Record) error {
	if f.ingestErr != nil {
		return f.ingestErr
	}
	f.ingestedEntries = append(f.ingestedEntries, entries)
	f.ingestedNames = append(f.ingestedNames, names)
	return nil
}

func (f *fakeLeagueRepo) ListStartTimes(context.Context) ([]time.Time, error) {
	return f.startTimes, nil
}

func (f *fakeLeagueRepo) ListMissingStartTimes(context.Context) ([]time.Time, error) {
	return f.missing, nil
}

func (f *fakeLeagueRepo) MarkMissing(_ context.Context, startTime time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, startTime)
	return nil
}

type fakeXRepo struct {
	startTimes []time.Time
	missing    []time.Time

	ingestedEntries [][]ranking.XEntry
	ingestedNames   [][]playername.Record
	marked          []time.Time
	ingestErr       error
}

func (f *fakeXRepo) IngestWindow(_ context.Context, entries []ranking.XEntry, names []playername.Record) error {
	if f.ingestErr != nil {
		return f.ingestErr
	}
	f.ingestedEntries = append(f.ingestedEntries, entries)
	f.ingestedNames = append(f.ingestedNames, names)
	return nil
}

func (f *fakeXRepo) ListStartTimes(context.Context) ([]time.Time, error) {
	return f.startTimes, nil
}

func (f *fakeXRepo) ListMissingStartTimes(context.Context) ([]time.Time, error) {
	return f.missing, nil
}

func (f *fakeXRepo) MarkMissing(_ context.Context, startTime time.Time) error {
	f.marked = append(f.marked, startTime)
	return nil
}

type fakeSplatfestRepo struct {
	schedules []ranking.SplatfestSchedule
	unfetched []ranking.SplatfestSchedule

	upserted        []ranking.SplatfestSchedule
	ingestedEntries [][]ranking.SplatfestEntry
	ingestedNames   [][]playername.Record
}

func (f *fakeSplatfestRepo) UpsertSchedules(_ context.Context, schedules []ranking.SplatfestSchedule) error {
	f.upserted = append(f.upserted, schedules...)
	return nil
}

func (f *fakeSplatfestRepo) ListSchedules(context.Context) ([]ranking.SplatfestSchedule, error) {
	return f.schedules, nil
}

func (f *fakeSplatfestRepo) ListUnfetched(_ context.Context, _ time.Time, limit int) ([]ranking.SplatfestSchedule, error) {
	if limit < len(f.unfetched) {
		return f.unfetched[:limit], nil
	}
	return f.unfetched, nil
}

func (f *fakeSplatfestRepo) IngestRanking(_ context.Context, entries []ranking.SplatfestEntry, names []playername.Record) error {
	f.ingestedEntries = append(f.ingestedEntries, entries)
	f.ingestedNames = append(f.ingestedNames, names)
	return nil
}

type fakeScheduleRepo struct {
	upcoming int
	inserted []ranking.LeagueSchedule
}

func (f *fakeScheduleRepo) CountUpcoming(context.Context, time.Time) (int, error) {
	return f.upcoming, nil
}

func (f *fakeScheduleRepo) InsertSchedules(_ context.Context, schedules []ranking.LeagueSchedule) error {
	f.inserted = append(f.inserted, schedules...)
	return nil
}

type fakeNameRepo struct {
	refreshes  int
	refreshErr error
}

func (f *fakeNameRepo) CurrentName(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeNameRepo) RefreshLatestNames(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

type fakeLeagueProvider struct {
	responses map[string]ExternalLeagueRanking
	errs      map[string]error
	calls     []string
}

func (f *fakeLeagueProvider) FetchLeagueRanking(_ context.Context, leagueID string) (ExternalLeagueRanking, error) {
	f.calls = append(f.calls, leagueID)
	if err, ok := f.errs[leagueID]; ok {
		return ExternalLeagueRanking{}, err
	}
	if payload, ok := f.responses[leagueID]; ok {
		return payload, nil
	}
	return ExternalLeagueRanking{}, fmt.Errorf("unexpected league id %q", leagueID)
}

type fakeXProvider struct {
	fetch func(windowID, ruleKey string, page int) (ExternalXRankingPage, error)
	calls []string
}

func (f *fakeXProvider) FetchXRankingPage(_ context.Context, windowID, ruleKey string, page int) (ExternalXRankingPage, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s/%s/%d", windowID, ruleKey, page))
	return f.fetch(windowID, ruleKey, page)
}

type fakeSplatfestProvider struct {
	responses map[int64]ExternalSplatfestRanking
	errs      map[int64]error
	calls     []int64
}

func (f *fakeSplatfestProvider) FetchSplatfestRanking(_ context.Context, _ string, splatfestID int64) (ExternalSplatfestRanking, error) {
	f.calls = append(f.calls, splatfestID)
	if err, ok := f.errs[splatfestID]; ok {
		return ExternalSplatfestRanking{}, err
	}
	return f.responses[splatfestID], nil
}

type fakeScheduleProvider struct {
	leagueSchedules    []ExternalLeagueSchedule
	splatfestSchedules []ExternalSplatfestSchedule
	leagueCalls        int
}

func (f *fakeScheduleProvider) FetchLeagueSchedules(context.Context) ([]ExternalLeagueSchedule, error) {
	f.leagueCalls++
	return f.leagueSchedules, nil
}

func (f *fakeScheduleProvider) FetchSplatfestSchedules(context.Context) ([]ExternalSplatfestSchedule, error) {
	return f.splatfestSchedules, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
