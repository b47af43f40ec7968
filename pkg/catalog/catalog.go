package catalog

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/dbcore/pkg/dberr"
	"github.com/cuemby/dbcore/pkg/log"
	"github.com/cuemby/dbcore/pkg/metrics"
)

const recoveryWindow = 24 * time.Hour

// backupSetEntry is the B-tree element for the backup-set collection,
// ordered by (database, SCN end, set id) so that an in-order walk of the
// tree (list_backup_sets) yields a database's history in SCN-end order
// without re-sorting a map on every call.
type backupSetEntry struct {
	key string // databaseID + "\x00" + zero-padded scnEnd + "\x00" + setID
	set BackupSet
}

func setKey(databaseID string, scnEnd uint64, setID string) string {
	return databaseID + "\x00" + paddedUint64(scnEnd) + "\x00" + setID
}

func paddedUint64(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

func lessBackupSetEntry(a, b backupSetEntry) bool { return a.key < b.key }

// archivedLogEntry is the B-tree element for the archived-log collection,
// ordered by sequence number so find_archived_logs returns its SCN-range
// matches in sequence order.
type archivedLogEntry struct {
	sequence uint64
	log      ArchivedLog
}

func lessArchivedLogEntry(a, b archivedLogEntry) bool { return a.sequence < b.sequence }

// Catalog is the backup catalog: a centralized repository of backup
// metadata across every database the engine manages.
type Catalog struct {
	config Config
	logger zerolog.Logger

	mu            sync.RWMutex
	databases     map[string]*DatabaseRegistration
	backupSets    *btree.BTreeG[backupSetEntry]
	setKeyByID    map[string]string // setID -> backupSetEntry.key, for O(1) lookup/removal
	backupPieces  map[string]*BackupPiece
	restorePoints map[string]*RestorePoint
	archivedLogs  *btree.BTreeG[archivedLogEntry]
	reports       map[string]*BackupReport
}

// NewCatalog constructs an empty Catalog. It does not touch disk; disk
// interaction happens only through Export/Import.
func NewCatalog(config Config) (*Catalog, error) {
	return &Catalog{
		config:        config,
		logger:        log.WithComponent("catalog"),
		databases:     make(map[string]*DatabaseRegistration),
		backupSets:    btree.NewG(32, lessBackupSetEntry),
		setKeyByID:    make(map[string]string),
		backupPieces:  make(map[string]*BackupPiece),
		restorePoints: make(map[string]*RestorePoint),
		archivedLogs:  btree.NewG(32, lessArchivedLogEntry),
		reports:       make(map[string]*BackupReport),
	}, nil
}

// RegisterDatabase adds a database to the catalog. It is idempotent on
// collision: registering an already-known database id overwrites its
// registration with a fresh one, zeroing its backup counters.
func (c *Catalog) RegisterDatabase(databaseID, databaseName, version, platform string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.databases[databaseID] = &DatabaseRegistration{
		DatabaseID:       databaseID,
		DatabaseName:     databaseName,
		RegistrationTime: time.Now(),
		Version:          version,
		Platform:         platform,
		Tags:             make(map[string]string),
	}
	log.WithDatabaseID(databaseID).Info().Str("version", version).Msg("database registered")
	return nil
}

// UnregisterDatabase removes a database's registration. It does not
// remove the database's backup sets, pieces, or logs.
func (c *Catalog) UnregisterDatabase(databaseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.databases[databaseID]; !ok {
		return dberr.NotFoundf("UnregisterDatabase", "database %q not found", databaseID)
	}
	delete(c.databases, databaseID)
	log.WithDatabaseID(databaseID).Info().Msg("database unregistered")
	return nil
}

// RegisterBackupSet records a completed or in-progress backup set and
// updates its database's running totals.
func (c *Catalog) RegisterBackupSet(set BackupSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.databases[set.DatabaseID]; ok {
		db.TotalBackups++
		db.TotalBackupSizeBytes += set.TotalSizeBytes
		if set.CompletionTime != nil {
			db.LastBackupTime = set.CompletionTime
		}
	}

	key := setKey(set.DatabaseID, set.SCNEnd, set.SetID)
	c.backupSets.ReplaceOrInsert(backupSetEntry{key: key, set: set})
	c.setKeyByID[set.SetID] = key
	return nil
}

// RegisterBackupPiece records one physical file belonging to a backup set.
func (c *Catalog) RegisterBackupPiece(piece BackupPiece) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backupPieces[piece.PieceID] = &piece
	return nil
}

// MarkObsolete marks a backup set, and every piece belonging to it, obsolete.
func (c *Catalog) MarkObsolete(setID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok := c.setKeyByID[setID]
	if !ok {
		return dberr.NotFoundf("MarkObsolete", "backup set %q not found", setID)
	}
	entry, ok := c.backupSets.Get(backupSetEntry{key: key})
	if !ok {
		return dberr.NotFoundf("MarkObsolete", "backup set %q not found", setID)
	}

	entry.set.Obsolete = true
	c.backupSets.ReplaceOrInsert(entry)

	for _, pieceID := range entry.set.Pieces {
		if piece, ok := c.backupPieces[pieceID]; ok {
			piece.Status = PieceObsolete
		}
	}
	log.WithSetID(setID).Debug().Int("pieces", len(entry.set.Pieces)).Msg("backup set marked obsolete")
	return nil
}

// DeleteObsolete removes every backup set currently obsolete (explicitly
// marked, or past its retention window) along with its pieces, returning
// the removed set ids.
func (c *Catalog) DeleteObsolete() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var obsoleteKeys []backupSetEntry
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		if entry.set.IsObsolete() {
			obsoleteKeys = append(obsoleteKeys, entry)
		}
		return true
	})

	var deleted []string
	for _, entry := range obsoleteKeys {
		c.backupSets.Delete(entry)
		delete(c.setKeyByID, entry.set.SetID)
		for _, pieceID := range entry.set.Pieces {
			delete(c.backupPieces, pieceID)
		}
		deleted = append(deleted, entry.set.SetID)
	}
	return deleted, nil
}

// ListBackupSets returns every backup set for a database, in SCN-end order.
func (c *Catalog) ListBackupSets(databaseID string) []BackupSet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []BackupSet
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		if entry.set.DatabaseID == databaseID {
			out = append(out, entry.set)
		}
		return true
	})
	return out
}

// FindRecoveryPath computes the ordered list of backup sets needed to
// recover a database to targetSCN: the most recent non-obsolete full
// backup at or before targetSCN, followed by every non-obsolete
// incremental or differential backup that both starts at or after that
// full backup's end SCN and ends at or before targetSCN, in SCN-start
// order.
func (c *Catalog) FindRecoveryPath(databaseID string, targetSCN uint64) ([]BackupSet, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CatalogRecoveryPathDuration)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var fullBackup *BackupSet
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		set := entry.set
		if set.DatabaseID == databaseID &&
			set.BackupType == BackupFull &&
			set.SCNEnd <= targetSCN &&
			!set.IsObsolete() {
			if fullBackup == nil || set.SCNEnd > fullBackup.SCNEnd {
				s := set
				fullBackup = &s
			}
		}
		return true
	})

	if fullBackup == nil {
		return nil, dberr.New(dberr.NoSuitableBackup, "FindRecoveryPath",
			"no suitable full backup found for database "+databaseID)
	}

	path := []BackupSet{*fullBackup}

	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		set := entry.set
		if set.DatabaseID == databaseID &&
			(set.BackupType == BackupIncremental || set.BackupType == BackupDifferential) &&
			set.SCNStart >= fullBackup.SCNEnd &&
			set.SCNEnd <= targetSCN &&
			!set.IsObsolete() {
			path = append(path, set)
		}
		return true
	})

	sortBackupSetsBySCNStart(path)
	return path, nil
}

func sortBackupSetsBySCNStart(sets []BackupSet) {
	for i := 1; i < len(sets); i++ {
		for j := i; j > 0 && sets[j].SCNStart < sets[j-1].SCNStart; j-- {
			sets[j], sets[j-1] = sets[j-1], sets[j]
		}
	}
}

// RegisterRestorePoint records a named recovery target.
func (c *Catalog) RegisterRestorePoint(point RestorePoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restorePoints[point.RestorePointID] = &point
	return nil
}

// RegisterArchivedLog records one archived redo log segment.
func (c *Catalog) RegisterArchivedLog(entry ArchivedLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archivedLogs.ReplaceOrInsert(archivedLogEntry{sequence: entry.SequenceNumber, log: entry})
	return nil
}

// FindArchivedLogs returns every non-deleted archived log for a database
// whose SCN range overlaps [startSCN, endSCN], in sequence order.
func (c *Catalog) FindArchivedLogs(databaseID string, startSCN, endSCN uint64) []ArchivedLog {
	if startSCN > endSCN {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ArchivedLog
	c.archivedLogs.Ascend(func(entry archivedLogEntry) bool {
		l := entry.log
		if l.DatabaseID == databaseID &&
			l.FirstChangeSCN <= endSCN &&
			l.NextChangeSCN >= startSCN &&
			l.Status != ArchiveLogDeleted {
			out = append(out, l)
		}
		return true
	})
	return out
}

// GenerateReport computes and stores a report over the catalog's current
// state, optionally filtered to one database, and returns its id.
func (c *Catalog) GenerateReport(reportType ReportType, databaseFilter *string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reportID := "REPORT-" + uuid.New().String()

	var filtered []BackupSet
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		if databaseFilter == nil || entry.set.DatabaseID == *databaseFilter {
			filtered = append(filtered, entry.set)
		}
		return true
	})

	var totalSize, totalCompressed uint64
	var oldest, newest *time.Time
	for _, set := range filtered {
		totalSize += set.TotalSizeBytes
		totalCompressed += set.CompressedSizeBytes
		if oldest == nil || set.StartTime.Before(*oldest) {
			t := set.StartTime
			oldest = &t
		}
		if set.CompletionTime != nil && (newest == nil || set.CompletionTime.After(*newest)) {
			t := *set.CompletionTime
			newest = &t
		}
	}

	ratio := 1.0
	if totalCompressed > 0 {
		ratio = float64(totalSize) / float64(totalCompressed)
	}

	totalDatabases := len(c.databases)
	if databaseFilter != nil {
		totalDatabases = 1
	}

	summary := ReportSummary{
		TotalDatabases:           totalDatabases,
		TotalBackupSets:          len(filtered),
		TotalBackupPieces:        len(c.backupPieces),
		TotalSizeBytes:           totalSize,
		TotalCompressedSizeBytes: totalCompressed,
		CompressionRatio:         ratio,
		OldestBackup:             oldest,
		NewestBackup:             newest,
	}

	var details []ReportDetail
	for dbID, db := range c.databases {
		if databaseFilter != nil && dbID != *databaseFilter {
			continue
		}

		var dbSize uint64
		dbSets := 0
		for _, set := range filtered {
			if set.DatabaseID == dbID {
				dbSets++
				dbSize += set.TotalSizeBytes
			}
		}

		compliant := db.LastBackupTime != nil && time.Since(*db.LastBackupTime) < recoveryWindow

		details = append(details, ReportDetail{
			DatabaseID:              dbID,
			DatabaseName:            db.DatabaseName,
			BackupCount:             dbSets,
			TotalSizeBytes:          dbSize,
			LastBackupTime:          db.LastBackupTime,
			RecoveryWindowCompliant: compliant,
		})
	}

	c.reports[reportID] = &BackupReport{
		ReportID:       reportID,
		ReportType:     reportType,
		GeneratedAt:    time.Now(),
		DatabaseFilter: databaseFilter,
		Summary:        summary,
		Details:        details,
	}

	return reportID, nil
}

// GetReport returns a previously generated report by id.
func (c *Catalog) GetReport(reportID string) (*BackupReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report, ok := c.reports[reportID]
	if !ok {
		return nil, dberr.NotFoundf("GetReport", "report %q not found", reportID)
	}
	out := *report
	return &out, nil
}

// Statistics returns a point-in-time snapshot of the catalog's holdings.
func (c *Catalog) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize, totalCompressed uint64
	var obsolete int
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		totalSize += entry.set.TotalSizeBytes
		totalCompressed += entry.set.CompressedSizeBytes
		if entry.set.IsObsolete() {
			obsolete++
		}
		return true
	})

	ratio := 1.0
	if totalCompressed > 0 {
		ratio = float64(totalSize) / float64(totalCompressed)
	}

	return Statistics{
		TotalDatabases:           len(c.databases),
		TotalBackupSets:          c.backupSets.Len(),
		TotalBackupPieces:        len(c.backupPieces),
		TotalArchivedLogs:        c.archivedLogs.Len(),
		ObsoleteBackups:          obsolete,
		TotalSizeBytes:           totalSize,
		TotalCompressedSizeBytes: totalCompressed,
		CompressionRatio:         ratio,
	}
}

// CompliantDatabases returns how many registered databases have a backup
// within the recovery window, the same rule GenerateReport uses per
// database in ReportDetail.RecoveryWindowCompliant.
func (c *Catalog) CompliantDatabases() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	compliant := 0
	for _, db := range c.databases {
		if db.LastBackupTime != nil && time.Since(*db.LastBackupTime) < recoveryWindow {
			compliant++
		}
	}
	return compliant
}
