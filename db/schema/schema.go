// Package schema contains the table definitions of the workflow metadata
// store, and the history of its schema versions.
package schema

import (
	"slices"

	"go.hackfix.me/dbadmin/db/migrator"
)

var (
	stampedeTables = []*Table{
		schemaInfo, workflow, workflowState, host, job, jobEdge, jobInstance,
		jobState, task, taskEdge, invocation, file,
	}
	dashboardTables = []*Table{masterWorkflow, masterWorkflowState}
)

// Versions returns the history of schema versions, oldest first.
func Versions() []migrator.Version {
	v1 := names(slices.Concat(stampedeTables, dashboardTables, []*Table{rcLFN, rcAttr}))
	v2 := append(slices.Clone(v1), names([]*Table{ensemble, ensembleWorkflow})...)
	// The replica catalog attributes were moved to rc_meta, keyed by rc_pfn.
	v3 := append(slices.DeleteFunc(slices.Clone(v2), func(n string) bool { return n == rcAttr.Name() }),
		names([]*Table{rcPFN, rcMeta})...)
	v4 := append(slices.Clone(v3), names([]*Table{tag, integrityMeta})...)

	return []migrator.Version{
		{Ordinal: 1, Releases: []string{"4.3.0", "4.3.1", "4.3.2"}, Objects: v1},
		{Ordinal: 2, Releases: []string{"4.4.0", "4.4.1", "4.4.2"}, Objects: v2},
		{Ordinal: 3, Releases: []string{"4.5.0", "4.5.1", "4.5.2", "4.5.3", "4.5.4"}, Objects: v3},
		{Ordinal: 4, Releases: []string{"4.6.0", "4.6.1", "4.6.2"}, Objects: v4},
	}
}

// Registry returns the registry of schema versions.
func Registry() *migrator.Registry {
	reg, err := migrator.NewRegistry(Versions()...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Tables returns the catalog of every table of every schema version.
func Tables() Catalog {
	return NewCatalog(slices.Concat(
		stampedeTables, dashboardTables,
		[]*Table{rcLFN, rcAttr, rcPFN, rcMeta, ensemble, ensembleWorkflow, tag, integrityMeta},
	)...)
}

func names(tables []*Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name()
	}
	return out
}
