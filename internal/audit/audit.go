// Package audit appends assessment outcomes to JSONL audit files. Each
// assessment produces one record in the assessment log, one per dimension
// in the dimension log, and one per failed validation in the failure log.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"adri/domain/assessment"
	"adri/domain/core"
	"adri/domain/standard"
)

// Audit log file names, fixed so downstream tooling can tail them
const (
	AssessmentLogFile = "adri_assessment_logs.jsonl"
	DimensionLogFile  = "adri_dimension_scores.jsonl"
	FailureLogFile    = "adri_failed_validations.jsonl"
)

// Execution decisions recorded for guarded calls
const (
	DecisionAllowed        = "ALLOWED"
	DecisionBlocked        = "BLOCKED"
	DecisionWarnContinue   = "WARN_CONTINUE"
	DecisionContinueSilent = "CONTINUE_SILENT"
)

// AssessmentRecord is one line of the assessment log
type AssessmentRecord struct {
	AssessmentID      core.AssessmentID `json:"assessment_id"`
	Timestamp         time.Time         `json:"timestamp"`
	StandardID        string            `json:"standard_id"`
	StandardPath      string            `json:"standard_path,omitempty"`
	FunctionName      string            `json:"function_name,omitempty"`
	DataFingerprint   string            `json:"data_fingerprint,omitempty"`
	RowCount          int               `json:"row_count"`
	ColumnCount       int               `json:"column_count"`
	OverallScore      float64           `json:"overall_score"`
	RequiredScore     float64           `json:"required_score"`
	Passed            bool              `json:"passed"`
	ExecutionDecision string            `json:"execution_decision"`
	FailureMode       string            `json:"failure_mode,omitempty"`
	CacheHit          bool              `json:"cache_hit"`
	DurationMS        int64             `json:"duration_ms"`
}

// DimensionRecord is one line of the dimension score log
type DimensionRecord struct {
	AssessmentID core.AssessmentID `json:"assessment_id"`
	Timestamp    time.Time         `json:"timestamp"`
	Dimension    string            `json:"dimension"`
	Score        float64           `json:"score"`
	MaxScore     float64           `json:"max_score"`
	MinimumScore float64           `json:"minimum_score"`
	Passed       bool              `json:"passed"`
}

// FailureRecord is one line of the failed validation log
type FailureRecord struct {
	AssessmentID       core.AssessmentID `json:"assessment_id"`
	Timestamp          time.Time         `json:"timestamp"`
	FieldName          string            `json:"field_name"`
	IssueType          string            `json:"issue_type"`
	AffectedRows       int               `json:"affected_rows"`
	AffectedPercentage float64           `json:"affected_percentage"`
	SampleFailures     []string          `json:"sample_failures,omitempty"`
	Remediation        string            `json:"remediation,omitempty"`
}

// Logger appends audit records. Safe for concurrent use; all records of
// one assessment are written under a single lock hold so readers never
// observe a torn record set.
type Logger struct {
	mu  sync.Mutex
	dir string
}

// NewLogger creates the audit directory if needed and returns a logger
// writing into it.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir %s: %w", dir, err)
	}
	return &Logger{dir: dir}, nil
}

// Entry bundles everything known about one guarded assessment
type Entry struct {
	Result       *assessment.AssessmentResult
	Standard     *standard.Standard
	StandardPath string
	FunctionName string
	Decision     string
	FailureMode  string
	CacheHit     bool
	Fingerprint  string
	RowCount     int
	ColumnCount  int
	Duration     time.Duration
}

// Record appends the full record set for one assessment
func (l *Logger) Record(e Entry) error {
	if e.Result == nil {
		return fmt.Errorf("audit: nil assessment result")
	}
	now := time.Now().UTC()

	rec := AssessmentRecord{
		AssessmentID:      e.Result.AssessmentID,
		Timestamp:         now,
		StandardID:        e.Result.StandardID,
		StandardPath:      e.StandardPath,
		FunctionName:      e.FunctionName,
		DataFingerprint:   e.Fingerprint,
		RowCount:          e.RowCount,
		ColumnCount:       e.ColumnCount,
		OverallScore:      e.Result.OverallScore,
		Passed:            e.Result.Passed,
		ExecutionDecision: e.Decision,
		FailureMode:       e.FailureMode,
		CacheHit:          e.CacheHit,
		DurationMS:        e.Duration.Milliseconds(),
	}
	if e.Standard != nil {
		rec.RequiredScore = e.Standard.Requirements.OverallMinimum
	}

	dims := make([]DimensionRecord, 0, len(standard.Dimensions))
	for _, dim := range standard.Dimensions {
		ds, ok := e.Result.DimensionScores[dim]
		if !ok {
			continue
		}
		minimum := 0.0
		if e.Standard != nil {
			if dc, found := e.Standard.Requirements.DimensionRequirements[dim]; found {
				minimum = dc.MinimumScore
			}
		}
		dims = append(dims, DimensionRecord{
			AssessmentID: e.Result.AssessmentID,
			Timestamp:    now,
			Dimension:    dim,
			Score:        ds.Score,
			MaxScore:     standard.MaxDimensionScore,
			MinimumScore: minimum,
			Passed:       ds.Score >= minimum,
		})
	}

	fails := make([]FailureRecord, 0, len(e.Result.Failures))
	for _, f := range e.Result.Failures {
		fails = append(fails, FailureRecord{
			AssessmentID:       e.Result.AssessmentID,
			Timestamp:          now,
			FieldName:          f.FieldName,
			IssueType:          f.IssueType,
			AffectedRows:       f.AffectedRows,
			AffectedPercentage: f.AffectedPercentage,
			SampleFailures:     f.SampleFailures,
			Remediation:        f.Remediation,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.appendLines(AssessmentLogFile, rec); err != nil {
		return err
	}
	for _, d := range dims {
		if err := l.appendLines(DimensionLogFile, d); err != nil {
			return err
		}
	}
	for _, f := range fails {
		if err := l.appendLines(FailureLogFile, f); err != nil {
			return err
		}
	}
	return nil
}

// appendLines marshals one record and appends it to the named file.
// Caller holds the lock.
func (l *Logger) appendLines(name string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("audit: marshal %s record: %w", name, err)
	}
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("audit: write %s: %w", path, err)
	}
	return nil
}

// Dir returns the directory audit files are written into
func (l *Logger) Dir() string { return l.dir }

// ReadAssessments loads every assessment record from the log, newest last
func (l *Logger) ReadAssessments() ([]AssessmentRecord, error) {
	var out []AssessmentRecord
	err := readJSONL(filepath.Join(l.dir, AssessmentLogFile), func(line []byte) error {
		var rec AssessmentRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Err(err).Msg("skipping malformed audit line")
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadDimensions loads every dimension record from the log
func (l *Logger) ReadDimensions() ([]DimensionRecord, error) {
	var out []DimensionRecord
	err := readJSONL(filepath.Join(l.dir, DimensionLogFile), func(line []byte) error {
		var rec DimensionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Err(err).Msg("skipping malformed audit line")
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadFailures loads every failed validation record from the log
func (l *Logger) ReadFailures() ([]FailureRecord, error) {
	var out []FailureRecord
	err := readJSONL(filepath.Join(l.dir, FailureLogFile), func(line []byte) error {
		var rec FailureRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Err(err).Msg("skipping malformed audit line")
			return nil
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}
