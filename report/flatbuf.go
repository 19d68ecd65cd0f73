package report

import (
	"errors"
	"fmt"
	"os"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/signalnine/warsim/bindings/warsim"
	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/simulation"
)

// ErrBadBatch is returned when a buffer is not a warsim batch
var ErrBadBatch = errors.New("not a warsim batch buffer")

// BatchInfo describes the run a FlatBuffers batch came from
type BatchInfo struct {
	Policy        string
	Seed          int64
	MaxIterations int
}

// EncodeBatch serialises a batch of records into a FlatBuffers buffer
func EncodeBatch(info BatchInfo, records []simulation.GameRecord) []byte {
	builder := flatbuffers.NewBuilder(1024 + len(records)*64)

	offsets := make([]flatbuffers.UOffsetT, len(records))
	counts := make([]byte, game.NumRanks)
	for i, rec := range records {
		for r, n := range rec.RankCounts {
			counts[r] = byte(n)
		}
		rankVec := builder.CreateByteVector(counts)

		warsim.GameRecordStart(builder)
		warsim.GameRecordAddSimId(builder, uint32(rec.SimID))
		warsim.GameRecordAddSeed(builder, rec.Seed)
		warsim.GameRecordAddRankCounts(builder, rankVec)
		warsim.GameRecordAddTurns(builder, uint32(rec.Turns))
		warsim.GameRecordAddTies(builder, uint32(rec.Ties))
		warsim.GameRecordAddLongestWar(builder, uint32(rec.LongestWar))
		warsim.GameRecordAddReshufflesA(builder, uint32(rec.Reshuffles[game.PlayerA]))
		warsim.GameRecordAddReshufflesB(builder, uint32(rec.Reshuffles[game.PlayerB]))
		warsim.GameRecordAddOutcome(builder, int8(rec.Outcome))
		offsets[i] = warsim.GameRecordEnd(builder)
	}

	// Add in reverse order (FlatBuffers convention)
	warsim.BatchStartGamesVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	gamesVec := builder.EndVector(len(offsets))

	policy := builder.CreateString(info.Policy)

	warsim.BatchStart(builder)
	warsim.BatchAddPolicy(builder, policy)
	warsim.BatchAddSeed(builder, info.Seed)
	warsim.BatchAddMaxIterations(builder, int32(info.MaxIterations))
	warsim.BatchAddGames(builder, gamesVec)
	warsim.FinishBatchBuffer(builder, warsim.BatchEnd(builder))

	return builder.FinishedBytes()
}

// DecodeBatch reads a buffer produced by EncodeBatch
func DecodeBatch(buf []byte) (info BatchInfo, records []simulation.GameRecord, err error) {
	if !warsim.BatchBufferHasIdentifier(buf) {
		return BatchInfo{}, nil, ErrBadBatch
	}
	// Malformed offsets make the accessors index out of range
	defer func() {
		if r := recover(); r != nil {
			info, records, err = BatchInfo{}, nil, fmt.Errorf("%w: %v", ErrBadBatch, r)
		}
	}()

	batch := warsim.GetRootAsBatch(buf, 0)
	info = BatchInfo{
		Policy:        string(batch.Policy()),
		Seed:          batch.Seed(),
		MaxIterations: int(batch.MaxIterations()),
	}

	n := batch.GamesLength()
	records = make([]simulation.GameRecord, n)
	fb := new(warsim.GameRecord)
	for i := 0; i < n; i++ {
		if !batch.Games(fb, i) {
			return BatchInfo{}, nil, fmt.Errorf("%w: missing game %d", ErrBadBatch, i)
		}
		if fb.RankCountsLength() != game.NumRanks {
			return BatchInfo{}, nil, fmt.Errorf("%w: game %d has %d rank counts", ErrBadBatch, i, fb.RankCountsLength())
		}

		rec := &records[i]
		rec.SimID = int(fb.SimId())
		rec.Seed = fb.Seed()
		for r := 0; r < game.NumRanks; r++ {
			rec.RankCounts[r] = int(fb.RankCounts(r))
		}
		rec.Turns = int(fb.Turns())
		rec.Ties = int(fb.Ties())
		rec.LongestWar = int(fb.LongestWar())
		rec.Reshuffles = [2]int{int(fb.ReshufflesA()), int(fb.ReshufflesB())}
		rec.Outcome = game.Outcome(fb.Outcome())
	}
	return info, records, nil
}

// WriteBatchFile encodes the batch to path
func WriteBatchFile(path string, info BatchInfo, records []simulation.GameRecord) error {
	if err := os.WriteFile(path, EncodeBatch(info, records), 0644); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

// ReadBatchFile loads a batch written by WriteBatchFile
func ReadBatchFile(path string) (BatchInfo, []simulation.GameRecord, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return BatchInfo{}, nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return DecodeBatch(buf)
}
