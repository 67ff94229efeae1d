package arena

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RecordingFile is the database written inside a dataset path
const RecordingFile = "episodes.sqlite"

// fixed width so timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const recordingSchema = `
CREATE TABLE IF NOT EXISTS episodes (
	id         TEXT PRIMARY KEY,
	game       TEXT NOT NULL,
	username   TEXT NOT NULL,
	seed       INTEGER,
	characters TEXT NOT NULL,
	outfits    TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	steps      INTEGER NOT NULL DEFAULT 0,
	terminated INTEGER NOT NULL DEFAULT 0,
	truncated  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS steps (
	episode_id TEXT NOT NULL REFERENCES episodes(id),
	step       INTEGER NOT NULL,
	actions    TEXT NOT NULL,
	rewards    TEXT NOT NULL,
	health_0   INTEGER NOT NULL,
	health_1   INTEGER NOT NULL,
	round      INTEGER NOT NULL,
	timer      INTEGER NOT NULL,
	PRIMARY KEY (episode_id, step)
);`

// EpisodeRecord is a recorded episode summary
type EpisodeRecord struct {
	ID         string
	Game       string
	Username   string
	Seed       *int64
	Characters [2]string
	Outfits    [2]int
	StartedAt  time.Time
	EndedAt    *time.Time
	Steps      int
	Terminated bool
	Truncated  bool
}

type recorder struct {
	db        *sql.DB
	game      string
	username  string
	episodeID string
	step      int
}

func openRecorder(rs *RecordingSettings, gameID string) (*recorder, error) {
	if err := os.MkdirAll(rs.DatasetPath, 0o755); err != nil {
		return nil, fmt.Errorf("recorder: create dataset path: %w", err)
	}
	db, err := openDataset(rs.DatasetPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(recordingSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: create schema: %w", err)
	}
	return &recorder{db: db, game: gameID, username: rs.Username}, nil
}

func openDataset(datasetPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", filepath.Join(datasetPath, RecordingFile))
	if err != nil {
		return nil, fmt.Errorf("recorder: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: enable WAL: %w", err)
	}
	return db, nil
}

func (r *recorder) startEpisode(seed *int64, characters [2]string, outfits [2]int) error {
	chars, _ := json.Marshal(characters)
	outs, _ := json.Marshal(outfits)
	var s sql.NullInt64
	if seed != nil {
		s = sql.NullInt64{Int64: *seed, Valid: true}
	}
	r.episodeID = uuid.New().String()
	r.step = 0
	_, err := r.db.Exec(
		`INSERT INTO episodes (id, game, username, seed, characters, outfits, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.episodeID, r.game, r.username, s, string(chars), string(outs), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recorder: start episode: %w", err)
	}
	return nil
}

func (r *recorder) recordStep(actions Actions, reward Rewards, obs Observation) error {
	acts, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("recorder: encode actions: %w", err)
	}
	rews, err := json.Marshal(reward)
	if err != nil {
		return fmt.Errorf("recorder: encode rewards: %w", err)
	}
	r.step++
	_, err = r.db.Exec(
		`INSERT INTO steps (episode_id, step, actions, rewards, health_0, health_1, round, timer) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.episodeID, r.step, string(acts), string(rews),
		obs.Agents[Agent0].Health, obs.Agents[Agent1].Health, obs.Round, obs.Timer,
	)
	if err != nil {
		return fmt.Errorf("recorder: record step %d: %w", r.step, err)
	}
	return nil
}

func (r *recorder) endEpisode(steps int, terminated, truncated bool) error {
	_, err := r.db.Exec(
		`UPDATE episodes SET ended_at = ?, steps = ?, terminated = ?, truncated = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), steps, terminated, truncated, r.episodeID,
	)
	if err != nil {
		return fmt.Errorf("recorder: end episode: %w", err)
	}
	return nil
}

func (r *recorder) close() error {
	return r.db.Close()
}

// LoadEpisodes reads the episodes recorded under a dataset path
func LoadEpisodes(datasetPath string) ([]EpisodeRecord, error) {
	if _, err := os.Stat(filepath.Join(datasetPath, RecordingFile)); err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	db, err := openDataset(datasetPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, game, username, seed, characters, outfits, started_at, ended_at, steps, terminated, truncated
		FROM episodes ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("recorder: query episodes: %w", err)
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var (
			rec                 EpisodeRecord
			seed                sql.NullInt64
			chars, outs         string
			startedAt           string
			endedAt             sql.NullString
			terminated, trunced int
		)
		if err := rows.Scan(&rec.ID, &rec.Game, &rec.Username, &seed, &chars, &outs, &startedAt, &endedAt, &rec.Steps, &terminated, &trunced); err != nil {
			return nil, fmt.Errorf("recorder: scan episode: %w", err)
		}
		if seed.Valid {
			s := seed.Int64
			rec.Seed = &s
		}
		if err := json.Unmarshal([]byte(chars), &rec.Characters); err != nil {
			return nil, fmt.Errorf("recorder: decode characters: %w", err)
		}
		if err := json.Unmarshal([]byte(outs), &rec.Outfits); err != nil {
			return nil, fmt.Errorf("recorder: decode outfits: %w", err)
		}
		if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("recorder: decode started_at: %w", err)
		}
		if endedAt.Valid {
			t, err := time.Parse(timeLayout, endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("recorder: decode ended_at: %w", err)
			}
			rec.EndedAt = &t
		}
		rec.Terminated = terminated != 0
		rec.Truncated = trunced != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}
