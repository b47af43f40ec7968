package catalog

import (
	"encoding/json"
	"os"

	"github.com/google/btree"

	"github.com/cuemby/dbcore/pkg/dberr"
)

// catalogExport is the single JSON document produced by ExportCatalog and
// consumed by ImportCatalog: five top-level collections that round-trip
// exactly.
type catalogExport struct {
	Databases     map[string]*DatabaseRegistration `json:"databases"`
	BackupSets    map[string]BackupSet              `json:"backup_sets"`
	BackupPieces  map[string]*BackupPiece           `json:"backup_pieces"`
	RestorePoints map[string]*RestorePoint          `json:"restore_points"`
	ArchivedLogs  map[string]ArchivedLog            `json:"archived_logs"`
}

// ExportCatalog writes the catalog's full state to path as a single
// pretty-printed JSON document.
func (c *Catalog) ExportCatalog(path string) error {
	c.mu.RLock()
	data := catalogExport{
		Databases:     make(map[string]*DatabaseRegistration, len(c.databases)),
		BackupSets:    make(map[string]BackupSet, c.backupSets.Len()),
		BackupPieces:  make(map[string]*BackupPiece, len(c.backupPieces)),
		RestorePoints: make(map[string]*RestorePoint, len(c.restorePoints)),
		ArchivedLogs:  make(map[string]ArchivedLog, c.archivedLogs.Len()),
	}
	for id, db := range c.databases {
		data.Databases[id] = db
	}
	c.backupSets.Ascend(func(entry backupSetEntry) bool {
		data.BackupSets[entry.set.SetID] = entry.set
		return true
	})
	for id, piece := range c.backupPieces {
		data.BackupPieces[id] = piece
	}
	for id, point := range c.restorePoints {
		data.RestorePoints[id] = point
	}
	c.archivedLogs.Ascend(func(entry archivedLogEntry) bool {
		data.ArchivedLogs[entry.log.LogID] = entry.log
		return true
	})
	c.mu.RUnlock()

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return dberr.Wrap("ExportCatalog", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return dberr.New(dberr.IOError, "ExportCatalog", err.Error())
	}
	return nil
}

// ImportCatalog replaces the catalog's entire in-memory state with the
// contents of the JSON document at path.
func (c *Catalog) ImportCatalog(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dberr.New(dberr.IOError, "ImportCatalog", err.Error())
	}

	var data catalogExport
	if err := json.Unmarshal(raw, &data); err != nil {
		return dberr.Wrap("ImportCatalog", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.databases = make(map[string]*DatabaseRegistration, len(data.Databases))
	for id, db := range data.Databases {
		c.databases[id] = db
	}

	c.backupSets = btreeFromSets(data.BackupSets)
	c.setKeyByID = make(map[string]string, len(data.BackupSets))
	for id, set := range data.BackupSets {
		key := setKey(set.DatabaseID, set.SCNEnd, set.SetID)
		c.setKeyByID[id] = key
	}

	c.backupPieces = make(map[string]*BackupPiece, len(data.BackupPieces))
	for id, piece := range data.BackupPieces {
		c.backupPieces[id] = piece
	}

	c.restorePoints = make(map[string]*RestorePoint, len(data.RestorePoints))
	for id, point := range data.RestorePoints {
		c.restorePoints[id] = point
	}

	c.archivedLogs = btreeFromLogs(data.ArchivedLogs)

	return nil
}

func btreeFromSets(sets map[string]BackupSet) *btree.BTreeG[backupSetEntry] {
	tree := btree.NewG(32, lessBackupSetEntry)
	for _, set := range sets {
		tree.ReplaceOrInsert(backupSetEntry{key: setKey(set.DatabaseID, set.SCNEnd, set.SetID), set: set})
	}
	return tree
}

func btreeFromLogs(logs map[string]ArchivedLog) *btree.BTreeG[archivedLogEntry] {
	tree := btree.NewG(32, lessArchivedLogEntry)
	for _, l := range logs {
		tree.ReplaceOrInsert(archivedLogEntry{sequence: l.SequenceNumber, log: l})
	}
	return tree
}
