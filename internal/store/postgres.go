package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"strikewatch/internal/config"
	"strikewatch/internal/model"
)

// IncidentRecord maps the incidents table: one row per canonical incident
// from the latest published dataset.
type IncidentRecord struct {
	IncidentID       int64     `gorm:"column:incident_id;primaryKey;autoIncrement"`
	Date             string    `gorm:"column:date;type:date;not null;index"`
	City             *string   `gorm:"column:city;type:text"`
	Region           *string   `gorm:"column:region;type:text;index"`
	FacilityName     *string   `gorm:"column:facility_name;type:text"`
	TargetType       string    `gorm:"column:target_type;type:text;not null;index"`
	DamageSummary    string    `gorm:"column:damage_summary;type:text;not null"`
	Latitude         *float64  `gorm:"column:latitude;type:double precision"`
	Longitude        *float64  `gorm:"column:longitude;type:double precision"`
	SourceChannel    string    `gorm:"column:source_channel;type:text;not null"`
	Confidence       string    `gorm:"column:confidence;type:text;not null"`
	Maritime         bool      `gorm:"column:maritime;not null;default:false"`
	FirstMessageDate string    `gorm:"column:first_message_date;type:text;not null;default:''"`
	LastMessageDate  string    `gorm:"column:last_message_date;type:text;not null;default:''"`
	LastEventDate    string    `gorm:"column:last_event_date;type:text;not null;default:''"`
	ReviewNote       string    `gorm:"column:review_note;type:text;not null;default:''"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (IncidentRecord) TableName() string { return "incidents" }

func recordFromCanonical(c model.CanonicalIncident) IncidentRecord {
	return IncidentRecord{
		Date:             c.Date,
		City:             c.City,
		Region:           c.Region,
		FacilityName:     c.FacilityName,
		TargetType:       c.TargetType,
		DamageSummary:    c.DamageSummary,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		SourceChannel:    c.SourceChannel,
		Confidence:       c.Confidence,
		Maritime:         c.Maritime,
		FirstMessageDate: c.FirstMessageDate,
		LastMessageDate:  c.LastMessageDate,
		LastEventDate:    c.LastEventDate,
		ReviewNote:       c.ReviewNote,
	}
}

type Pool struct {
	gdb *gorm.DB
}

func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(resolveGormLogLevel(cfg.LogLevel, cfg.Environment)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}

	maxOpen := int(cfg.DBMaxConns)
	if maxOpen <= 0 {
		maxOpen = 8
	}
	minIdle := int(cfg.DBMinConns)
	if minIdle < 1 {
		minIdle = 1
	}
	if minIdle > maxOpen {
		minIdle = maxOpen
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(minIdle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&IncidentRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate schema: %w", err)
	}

	return &Pool{gdb: gdb}, nil
}

func (p *Pool) Close() error {
	sqlDB, err := p.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies database connectivity.
func (p *Pool) Ping(ctx context.Context) error {
	sqlDB, err := p.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ReplaceAll swaps the published dataset atomically: the table is cleared
// and reloaded inside one transaction so readers never see a partial load.
func (p *Pool) ReplaceAll(ctx context.Context, incidents []model.CanonicalIncident) (int, error) {
	records := make([]IncidentRecord, 0, len(incidents))
	for _, incident := range incidents {
		records = append(records, recordFromCanonical(incident))
	}

	err := p.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&IncidentRecord{}).Error; err != nil {
			return fmt.Errorf("clear incidents: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("insert incidents: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ListFilter narrows an incident listing. Zero values mean no constraint.
type ListFilter struct {
	From     string
	To       string
	Region   string
	Maritime *bool
	Page     int
	PerPage  int
}

const defaultPerPage = 100

// List returns one page of incidents ordered by date, plus the total count
// for the filter.
func (p *Pool) List(ctx context.Context, filter ListFilter) ([]IncidentRecord, int64, error) {
	query := p.gdb.WithContext(ctx).Model(&IncidentRecord{})

	if filter.From != "" {
		query = query.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}
	if region := strings.TrimSpace(filter.Region); region != "" {
		query = query.Where("lower(region) = lower(?)", region)
	}
	if filter.Maritime != nil {
		query = query.Where("maritime = ?", *filter.Maritime)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	var records []IncidentRecord
	err := query.
		Order("date, incident_id").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	return records, total, nil
}

// CountStat is one bucket of the aggregate stats endpoint.
type CountStat struct {
	Key   string `gorm:"column:key" json:"key"`
	Count int64  `gorm:"column:count" json:"count"`
}

// DatasetStats aggregates the published table for the stats endpoint.
type DatasetStats struct {
	Total        int64       `json:"total"`
	ByTargetType []CountStat `json:"by_target_type"`
	ByConfidence []CountStat `json:"by_confidence"`
}

func (p *Pool) Stats(ctx context.Context) (*DatasetStats, error) {
	stats := &DatasetStats{}

	if err := p.gdb.WithContext(ctx).Model(&IncidentRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	err := p.gdb.WithContext(ctx).Model(&IncidentRecord{}).
		Select("target_type AS key, count(*) AS count").
		Group("target_type").
		Order("count DESC, key").
		Scan(&stats.ByTargetType).Error
	if err != nil {
		return nil, fmt.Errorf("stats by target type: %w", err)
	}

	err = p.gdb.WithContext(ctx).Model(&IncidentRecord{}).
		Select("confidence AS key, count(*) AS count").
		Group("confidence").
		Order("count DESC, key").
		Scan(&stats.ByConfidence).Error
	if err != nil {
		return nil, fmt.Errorf("stats by confidence: %w", err)
	}

	return stats, nil
}

func resolveGormLogLevel(logLevel, environment string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug", "trace":
		return logger.Info
	case "warn", "warning":
		return logger.Warn
	case "error", "fatal", "panic":
		return logger.Error
	}
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		return logger.Warn
	}
	return logger.Silent
}
