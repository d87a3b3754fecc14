package schema

// Workflow monitoring (stampede) tables.
var (
	schemaInfo = NewTable("schema_info",
		"version_number NUMERIC(2,1) NOT NULL PRIMARY KEY",
		"version_timestamp NUMERIC(16,6) NOT NULL",
	)

	workflow = NewTable("workflow",
		"wf_id INTEGER NOT NULL PRIMARY KEY",
		"wf_uuid VARCHAR(255) NOT NULL",
		"dag_file_name VARCHAR(255)",
		"timestamp NUMERIC(16,6)",
		"submit_hostname VARCHAR(255)",
		"submit_dir TEXT",
		"planner_arguments TEXT",
		"user_name VARCHAR(255)",
		"grid_dn VARCHAR(255)",
		"planner_version VARCHAR(255)",
		"dax_label VARCHAR(255)",
		"dax_version VARCHAR(255)",
		"dax_file VARCHAR(255)",
		"parent_wf_id INTEGER",
		"root_wf_id INTEGER",
	).WithIndex("wf_uuid_uidx", true, "wf_uuid")

	workflowState = NewTable("workflowstate",
		"wf_id INTEGER NOT NULL",
		"state VARCHAR(255) NOT NULL",
		"timestamp NUMERIC(16,6) NOT NULL",
		"restart_count INTEGER NOT NULL",
		"status INTEGER",
	).WithConstraints("PRIMARY KEY (wf_id, state, timestamp)").
		WithIndex("workflowstate_wf_id_idx", false, "wf_id")

	host = NewTable("host",
		"host_id INTEGER NOT NULL PRIMARY KEY",
		"wf_id INTEGER NOT NULL",
		"site VARCHAR(255) NOT NULL",
		"hostname VARCHAR(255) NOT NULL",
		"ip VARCHAR(255) NOT NULL",
		"uname VARCHAR(255)",
		"total_memory INTEGER",
	).WithIndex("host_uidx", true, "wf_id", "site", "hostname", "ip")

	job = NewTable("job",
		"job_id INTEGER NOT NULL PRIMARY KEY",
		"wf_id INTEGER NOT NULL",
		"exec_job_id VARCHAR(255) NOT NULL",
		"submit_file VARCHAR(255) NOT NULL",
		"type_desc VARCHAR(255) NOT NULL",
		"clustered INTEGER NOT NULL",
		"max_retries INTEGER NOT NULL",
		"executable TEXT NOT NULL",
		"argv TEXT",
		"task_count INTEGER NOT NULL",
	).WithIndex("job_uidx", true, "wf_id", "exec_job_id").
		WithIndex("job_type_desc_idx", false, "type_desc")

	jobEdge = NewTable("job_edge",
		"wf_id INTEGER NOT NULL",
		"parent_exec_job_id VARCHAR(255) NOT NULL",
		"child_exec_job_id VARCHAR(255) NOT NULL",
	).WithConstraints("PRIMARY KEY (wf_id, parent_exec_job_id, child_exec_job_id)")

	jobInstance = NewTable("job_instance",
		"job_instance_id INTEGER NOT NULL PRIMARY KEY",
		"job_id INTEGER NOT NULL",
		"host_id INTEGER",
		"job_submit_seq INTEGER NOT NULL",
		"sched_id VARCHAR(255)",
		"site VARCHAR(255)",
		"user_name VARCHAR(255)",
		"work_dir TEXT",
		"cluster_start NUMERIC(16,6)",
		"cluster_duration NUMERIC(10,3)",
		"local_duration NUMERIC(10,3)",
		"subwf_id INTEGER",
		"stdout_file VARCHAR(255)",
		"stdout_text TEXT",
		"stderr_file VARCHAR(255)",
		"stderr_text TEXT",
		"stdin_file VARCHAR(255)",
		"multiplier_factor INTEGER NOT NULL DEFAULT 1",
		"exitcode INTEGER",
	).WithIndex("job_instance_uidx", true, "job_id", "job_submit_seq")

	jobState = NewTable("jobstate",
		"job_instance_id INTEGER NOT NULL",
		"state VARCHAR(255) NOT NULL",
		"timestamp NUMERIC(16,6) NOT NULL",
		"jobstate_submit_seq INTEGER NOT NULL",
	).WithConstraints("PRIMARY KEY (job_instance_id, state, timestamp, jobstate_submit_seq)")

	task = NewTable("task",
		"task_id INTEGER NOT NULL PRIMARY KEY",
		"job_id INTEGER",
		"wf_id INTEGER NOT NULL",
		"abs_task_id VARCHAR(255)",
		"transformation TEXT NOT NULL",
		"argv TEXT",
		"type_desc VARCHAR(255) NOT NULL",
	).WithIndex("task_abs_task_id_idx", false, "abs_task_id").
		WithIndex("task_wf_id_idx", false, "wf_id")

	taskEdge = NewTable("task_edge",
		"wf_id INTEGER NOT NULL",
		"parent_abs_task_id VARCHAR(255)",
		"child_abs_task_id VARCHAR(255)",
	).WithIndex("task_edge_uidx", true, "wf_id", "parent_abs_task_id", "child_abs_task_id")

	invocation = NewTable("invocation",
		"invocation_id INTEGER NOT NULL PRIMARY KEY",
		"job_instance_id INTEGER NOT NULL",
		"task_submit_seq INTEGER NOT NULL",
		"start_time NUMERIC(16,6) NOT NULL",
		"remote_duration NUMERIC(10,3) NOT NULL",
		"remote_cpu_time NUMERIC(10,3)",
		"exitcode INTEGER NOT NULL",
		"transformation TEXT NOT NULL",
		"executable TEXT NOT NULL",
		"argv TEXT",
		"abs_task_id VARCHAR(255)",
		"wf_id INTEGER NOT NULL",
	).WithIndex("invocation_uidx", true, "job_instance_id", "task_submit_seq").
		WithIndex("invocation_wf_id_idx", false, "wf_id")

	file = NewTable("file",
		"file_id INTEGER NOT NULL PRIMARY KEY",
		"task_id INTEGER",
		"lfn VARCHAR(255)",
		"estimated_size INTEGER",
		"md_checksum VARCHAR(255)",
		"type VARCHAR(255)",
	)

	tag = NewTable("tag",
		"tag_id INTEGER NOT NULL PRIMARY KEY",
		"wf_id INTEGER NOT NULL",
		"job_instance_id INTEGER NOT NULL",
		"name VARCHAR(255) NOT NULL",
		"count INTEGER NOT NULL",
	).WithIndex("tag_job_instance_id_idx", false, "job_instance_id")

	integrityMeta = NewTable("integrity_meta",
		"integrity_id INTEGER NOT NULL PRIMARY KEY",
		"wf_id INTEGER NOT NULL",
		"job_instance_id INTEGER NOT NULL",
		"type VARCHAR(32) NOT NULL",
		"file_type VARCHAR(32)",
		"count INTEGER NOT NULL",
		"duration NUMERIC(10,3) NOT NULL",
	).WithIndex("integrity_meta_uidx", true, "job_instance_id", "type", "file_type")
)

// Dashboard tables.
var (
	masterWorkflow = NewTable("master_workflow",
		"wf_id INTEGER NOT NULL PRIMARY KEY",
		"wf_uuid VARCHAR(255) NOT NULL",
		"dax_label VARCHAR(255)",
		"dax_version VARCHAR(255)",
		"dax_file VARCHAR(255)",
		"dag_file_name VARCHAR(255)",
		"timestamp NUMERIC(16,6)",
		"submit_hostname VARCHAR(255)",
		"submit_dir TEXT",
		"planner_arguments TEXT",
		"user_name VARCHAR(255)",
		"grid_dn VARCHAR(255)",
		"planner_version VARCHAR(255)",
		"db_url TEXT",
	).WithIndex("master_workflow_wf_uuid_uidx", true, "wf_uuid")

	masterWorkflowState = NewTable("master_workflowstate",
		"wf_id INTEGER NOT NULL",
		"state VARCHAR(255) NOT NULL",
		"timestamp NUMERIC(16,6) NOT NULL",
		"restart_count INTEGER NOT NULL",
		"status INTEGER",
	).WithConstraints("PRIMARY KEY (wf_id, state, timestamp)")
)

// Replica catalog tables.
var (
	rcLFN = NewTable("rc_lfn",
		"id INTEGER NOT NULL PRIMARY KEY",
		"lfn VARCHAR(245) NOT NULL",
		"pfn VARCHAR(245) NOT NULL",
		"site VARCHAR(245)",
	).WithIndex("rc_lfn_uidx", true, "lfn", "pfn", "site").
		WithIndex("rc_lfn_lfn_idx", false, "lfn")

	rcAttr = NewTable("rc_attr",
		"id INTEGER NOT NULL",
		"name VARCHAR(245) NOT NULL",
		"value VARCHAR(245) NOT NULL",
	).WithConstraints("PRIMARY KEY (id, name)").
		WithIndex("rc_attr_name_idx", false, "name")

	rcPFN = NewTable("rc_pfn",
		"pfn_id INTEGER NOT NULL PRIMARY KEY",
		"lfn_id INTEGER NOT NULL",
		"pfn VARCHAR(245) NOT NULL",
		"site VARCHAR(245)",
	).WithIndex("rc_pfn_uidx", true, "lfn_id", "pfn", "site")

	rcMeta = NewTable("rc_meta",
		"lfn_id INTEGER NOT NULL",
		"meta_key VARCHAR(245) NOT NULL",
		"value VARCHAR(245) NOT NULL",
	).WithConstraints("PRIMARY KEY (lfn_id, meta_key)")
)

// Ensemble manager tables.
var (
	ensemble = NewTable("ensemble",
		"id INTEGER NOT NULL PRIMARY KEY",
		"name VARCHAR(100) NOT NULL",
		"created TIMESTAMP NOT NULL",
		"updated TIMESTAMP NOT NULL",
		"state VARCHAR(6) NOT NULL",
		"max_running INTEGER NOT NULL",
		"max_planning INTEGER NOT NULL",
		"username VARCHAR(100) NOT NULL",
	).WithIndex("ensemble_uidx", true, "username", "name")

	ensembleWorkflow = NewTable("ensemble_workflow",
		"id INTEGER NOT NULL PRIMARY KEY",
		"name VARCHAR(100) NOT NULL",
		"basedir VARCHAR(512) NOT NULL",
		"created TIMESTAMP NOT NULL",
		"updated TIMESTAMP NOT NULL",
		"state VARCHAR(11) NOT NULL",
		"priority INTEGER NOT NULL",
		"wf_uuid VARCHAR(36)",
		"submitdir VARCHAR(512)",
		"ensemble_id INTEGER NOT NULL",
		"plan_command VARCHAR(1024) NOT NULL",
	).WithIndex("ensemble_workflow_uidx", true, "ensemble_id", "name")
)
