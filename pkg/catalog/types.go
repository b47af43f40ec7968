package catalog

import "time"

// Config controls catalog construction. CatalogPath is kept on the Catalog
// but never read or created by it; ExportCatalog and ImportCatalog always
// take an explicit path.
type Config struct {
	CatalogPath            string
	MaxRetentionDays       uint64
	AutoRegisterBackups    bool
	CrossDatabaseTracking  bool
	EnableReporting        bool
	BackupHistoryLimit     int
}

// DefaultConfig returns the catalog's zero-value-safe defaults.
func DefaultConfig() Config {
	return Config{
		CatalogPath:           "/var/lib/dbcore/catalog",
		MaxRetentionDays:      365,
		AutoRegisterBackups:   true,
		CrossDatabaseTracking: true,
		EnableReporting:       true,
		BackupHistoryLimit:    10000,
	}
}

// PieceStatus is the lifecycle state of a single backup piece file.
type PieceStatus string

const (
	PieceAvailable PieceStatus = "available"
	PieceExpired   PieceStatus = "expired"
	PieceObsolete  PieceStatus = "obsolete"
	PieceCorrupted PieceStatus = "corrupted"
	PieceArchived  PieceStatus = "archived"
)

// BackupPiece is one physical file that makes up part of a BackupSet.
type BackupPiece struct {
	PieceID             string
	BackupSetID         string
	PieceNumber         uint32
	FilePath            string
	SizeBytes           uint64
	CompressedSizeBytes uint64
	Checksum            string
	CreationTime        time.Time
	CompletionTime      *time.Time
	Status              PieceStatus
}

// BackupSetType classifies how a backup set relates to prior backups.
type BackupSetType string

const (
	BackupFull         BackupSetType = "full"
	BackupIncremental  BackupSetType = "incremental"
	BackupDifferential BackupSetType = "differential"
	BackupArchiveLog   BackupSetType = "archive_log"
)

// BackupSet is a logical grouping of backup pieces completed together,
// bounded by a starting and ending system change number (SCN).
type BackupSet struct {
	SetID                 string
	DatabaseID            string
	BackupType            BackupSetType
	IncrementalLevel      uint32 // meaningful only when BackupType == BackupIncremental
	StartTime             time.Time
	CompletionTime        *time.Time
	SCNStart              uint64
	SCNEnd                uint64
	Pieces                []string
	TotalSizeBytes        uint64
	CompressedSizeBytes   uint64
	EncryptionEnabled     bool
	CompressionEnabled    bool
	Tags                  map[string]string
	KeepUntil             *time.Time
	Obsolete              bool
}

// IsComplete reports whether the backup set finished successfully.
func (s *BackupSet) IsComplete() bool {
	return s.CompletionTime != nil
}

// IsExpired reports whether the set's retention window has passed.
func (s *BackupSet) IsExpired() bool {
	return s.KeepUntil != nil && time.Now().After(*s.KeepUntil)
}

// IsObsolete reports whether the set is explicitly marked obsolete or has
// expired past its retention window.
func (s *BackupSet) IsObsolete() bool {
	return s.Obsolete || s.IsExpired()
}

// Duration returns how long the backup took, if it has completed.
func (s *BackupSet) Duration() (time.Duration, bool) {
	if s.CompletionTime == nil {
		return 0, false
	}
	return s.CompletionTime.Sub(s.StartTime), true
}

// DatabaseRegistration records one database known to the catalog.
type DatabaseRegistration struct {
	DatabaseID             string
	DatabaseName           string
	RegistrationTime       time.Time
	LastBackupTime         *time.Time
	TotalBackups           uint64
	TotalBackupSizeBytes   uint64
	Version                string
	Platform               string
	Tags                   map[string]string
}

// ReportType selects what a generated BackupReport summarizes.
type ReportType string

const (
	ReportBackupSummary     ReportType = "backup_summary"
	ReportObsoleteBackups   ReportType = "obsolete_backups"
	ReportBackupHistory     ReportType = "backup_history"
	ReportStorageUsage      ReportType = "storage_usage"
	ReportCompliance        ReportType = "compliance"
	ReportRecoverability    ReportType = "recoverability"
)

// ReportSummary aggregates catalog-wide totals at report generation time.
type ReportSummary struct {
	TotalDatabases            int
	TotalBackupSets           int
	TotalBackupPieces         int
	TotalSizeBytes            uint64
	TotalCompressedSizeBytes  uint64
	CompressionRatio          float64
	OldestBackup              *time.Time
	NewestBackup              *time.Time
}

// ReportDetail is one database's row within a BackupReport.
type ReportDetail struct {
	DatabaseID              string
	DatabaseName            string
	BackupCount             int
	TotalSizeBytes          uint64
	LastBackupTime          *time.Time
	RecoveryWindowCompliant bool
}

// BackupReport is a generated, addressable snapshot of catalog state.
type BackupReport struct {
	ReportID        string
	ReportType      ReportType
	GeneratedAt     time.Time
	DatabaseFilter  *string
	Summary         ReportSummary
	Details         []ReportDetail
}

// RestorePoint is a named, catalog-tracked recovery target.
type RestorePoint struct {
	RestorePointID string
	DatabaseID     string
	Name           string
	SCN            uint64
	CreationTime   time.Time
	Guaranteed     bool
	PreserveUntil  *time.Time
}

// ArchiveLogStatus is the lifecycle state of an archived redo log.
type ArchiveLogStatus string

const (
	ArchiveLogAvailable ArchiveLogStatus = "available"
	ArchiveLogBackedUp  ArchiveLogStatus = "backed_up"
	ArchiveLogDeleted   ArchiveLogStatus = "deleted"
	ArchiveLogExpired   ArchiveLogStatus = "expired"
)

// ArchivedLog is one archived redo log segment, addressable by its
// monotonically increasing sequence number within a thread.
type ArchivedLog struct {
	LogID           string
	DatabaseID      string
	SequenceNumber  uint64
	ThreadNumber    uint32
	FilePath        string
	SizeBytes       uint64
	FirstChangeSCN  uint64
	NextChangeSCN   uint64
	ArchivedTime    time.Time
	Status          ArchiveLogStatus
}

// Statistics is a point-in-time snapshot of the catalog's holdings.
type Statistics struct {
	TotalDatabases           int
	TotalBackupSets          int
	TotalBackupPieces        int
	TotalArchivedLogs        int
	ObsoleteBackups          int
	TotalSizeBytes           uint64
	TotalCompressedSizeBytes uint64
	CompressionRatio         float64
}
