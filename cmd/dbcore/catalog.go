package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbcore/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and maintain the backup catalog",
}

func newCLICatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dataDir := cfg.CatalogDataDir
	if dataDir == "" {
		dataDir = catalog.DefaultConfig().CatalogPath
	}
	return catalog.NewCatalog(catalog.Config{
		CatalogPath:           dataDir,
		MaxRetentionDays:      catalog.DefaultConfig().MaxRetentionDays,
		AutoRegisterBackups:   true,
		CrossDatabaseTracking: true,
		EnableReporting:       true,
		BackupHistoryLimit:    catalog.DefaultConfig().BackupHistoryLimit,
	})
}

var catalogExportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Export the catalog to a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		importFrom, _ := cmd.Flags().GetString("from")

		c, err := newCLICatalog(cmd)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}

		if importFrom != "" {
			if err := c.ImportCatalog(importFrom); err != nil {
				return fmt.Errorf("failed to seed catalog from %s: %w", importFrom, err)
			}
		}

		if err := c.ExportCatalog(path); err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}

		fmt.Printf("✓ Catalog exported: %s\n", path)
		return nil
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Import a catalog JSON document, replacing current contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		c, err := newCLICatalog(cmd)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}

		if err := c.ImportCatalog(path); err != nil {
			return fmt.Errorf("failed to import catalog: %w", err)
		}

		stats := c.Statistics()
		fmt.Printf("✓ Catalog imported: %s\n", path)
		fmt.Printf("  Databases: %d\n", stats.TotalDatabases)
		fmt.Printf("  Backup sets: %d (%d obsolete)\n", stats.TotalBackupSets, stats.ObsoleteBackups)
		fmt.Printf("  Archived logs: %d\n", stats.TotalArchivedLogs)
		return nil
	},
}

var catalogRecoveryPathCmd = &cobra.Command{
	Use:   "recovery-path DATABASE_ID SCN",
	Short: "Print the ordered backup sets needed to restore DATABASE_ID to SCN",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseID := args[0]
		var targetSCN uint64
		if _, err := fmt.Sscanf(args[1], "%d", &targetSCN); err != nil {
			return fmt.Errorf("invalid SCN %q: %w", args[1], err)
		}

		path, _ := cmd.Flags().GetString("from")
		if path == "" {
			return fmt.Errorf("--from PATH is required (catalog JSON document to read)")
		}

		c, err := newCLICatalog(cmd)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		if err := c.ImportCatalog(path); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		sets, err := c.FindRecoveryPath(databaseID, targetSCN)
		if err != nil {
			return fmt.Errorf("no recovery path: %w", err)
		}

		fmt.Printf("Recovery path for %s to SCN %d:\n", databaseID, targetSCN)
		for _, set := range sets {
			fmt.Printf("  %-12s %-12s SCN %d -> %d\n", set.SetID, set.BackupType, set.SCNStart, set.SCNEnd)
		}
		return nil
	},
}

var catalogReportCmd = &cobra.Command{
	Use:   "report TYPE",
	Short: "Generate a catalog report (backup_summary, obsolete_backups, backup_history, storage_usage, compliance, recoverability)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("from")
		if path == "" {
			return fmt.Errorf("--from PATH is required (catalog JSON document to read)")
		}

		c, err := newCLICatalog(cmd)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		if err := c.ImportCatalog(path); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		reportID, err := c.GenerateReport(catalog.ReportType(args[0]), nil)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		report, err := c.GetReport(reportID)
		if err != nil {
			return fmt.Errorf("failed to fetch generated report: %w", err)
		}

		fmt.Printf("Report %s (%s), generated %s\n", report.ReportID, report.ReportType, report.GeneratedAt.Format(time.RFC3339))
		fmt.Printf("  Databases: %d   Backup sets: %d   Compression ratio: %.2f\n",
			report.Summary.TotalDatabases, report.Summary.TotalBackupSets, report.Summary.CompressionRatio)
		for _, d := range report.Details {
			fmt.Printf("  - %-20s backups=%-4d compliant=%v\n", d.DatabaseName, d.BackupCount, d.RecoveryWindowCompliant)
		}
		return nil
	},
}

func init() {
	catalogExportCmd.Flags().String("from", "", "Import from an existing document before exporting (optional)")
	catalogRecoveryPathCmd.Flags().String("from", "", "Catalog JSON document to read")
	catalogReportCmd.Flags().String("from", "", "Catalog JSON document to read")

	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogRecoveryPathCmd)
	catalogCmd.AddCommand(catalogReportCmd)
}
