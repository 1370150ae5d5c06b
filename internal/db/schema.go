package db

// baseSchemaTemplate is the dialect-neutral core; {{BLOB}} and
// {{AUTOINC}} are substituted per driver since sqlite/postgres/mysql
// each spell blob columns and primary-key autoincrement differently.
const baseSchemaTemplate = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	pass_hash {{BLOB}} NOT NULL,
	flags INTEGER NOT NULL DEFAULT 0,
	billing_tier INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS api_tokens (
	token TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS players (
	account_id TEXT NOT NULL,
	player_idx INTEGER NOT NULL,
	player_name TEXT NOT NULL,
	explorer INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (account_id, player_idx)
);

CREATE TABLE IF NOT EXISTS scores (
	id {{AUTOINC}},
	owner_idx INTEGER NOT NULL,
	type INTEGER NOT NULL,
	name TEXT NOT NULL,
	points INTEGER NOT NULL DEFAULT 0,
	create_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_nodes (
	idx {{AUTOINC}},
	fields BIGINT NOT NULL DEFAULT 0,
	node_type INTEGER NOT NULL DEFAULT 0,
	create_time TIMESTAMP,
	modify_time TIMESTAMP,
	creator_uuid TEXT NOT NULL DEFAULT '',
	creator_idx INTEGER NOT NULL DEFAULT 0,
	create_age_name TEXT NOT NULL DEFAULT '',
	create_age_uuid TEXT NOT NULL DEFAULT '',
	int32_1 INTEGER NOT NULL DEFAULT 0, int32_2 INTEGER NOT NULL DEFAULT 0,
	int32_3 INTEGER NOT NULL DEFAULT 0, int32_4 INTEGER NOT NULL DEFAULT 0,
	uint32_1 INTEGER NOT NULL DEFAULT 0, uint32_2 INTEGER NOT NULL DEFAULT 0,
	uint32_3 INTEGER NOT NULL DEFAULT 0, uint32_4 INTEGER NOT NULL DEFAULT 0,
	uuid_1 TEXT NOT NULL DEFAULT '', uuid_2 TEXT NOT NULL DEFAULT '',
	uuid_3 TEXT NOT NULL DEFAULT '', uuid_4 TEXT NOT NULL DEFAULT '',
	string_1 TEXT NOT NULL DEFAULT '', string_2 TEXT NOT NULL DEFAULT '',
	string_3 TEXT NOT NULL DEFAULT '', string_4 TEXT NOT NULL DEFAULT '',
	string_5 TEXT NOT NULL DEFAULT '', string_6 TEXT NOT NULL DEFAULT '',
	istring_1 TEXT NOT NULL DEFAULT '', istring_2 TEXT NOT NULL DEFAULT '',
	text_1 TEXT NOT NULL DEFAULT '', text_2 TEXT NOT NULL DEFAULT '',
	blob_1 {{BLOB}}, blob_2 {{BLOB}}
);

CREATE TABLE IF NOT EXISTS vault_refs (
	parent_idx INTEGER NOT NULL,
	child_idx INTEGER NOT NULL,
	owner_idx INTEGER NOT NULL DEFAULT 0,
	seen INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (parent_idx, child_idx)
);

CREATE TABLE IF NOT EXISTS sdl_global (
	name TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	blob {{BLOB}},
	saved_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sdl_age (
	age_uuid TEXT NOT NULL,
	name TEXT NOT NULL,
	version INTEGER NOT NULL,
	blob {{BLOB}},
	saved_time TIMESTAMP NOT NULL,
	PRIMARY KEY (age_uuid, name)
);

CREATE TABLE IF NOT EXISTS servers (
	instance_uuid TEXT PRIMARY KEY,
	age_filename TEXT NOT NULL,
	age_inst_name TEXT NOT NULL,
	sequence_num INTEGER NOT NULL DEFAULT 0,
	temporary INTEGER NOT NULL DEFAULT 0
);
`

func schemaFor(driver string) string {
	blob, autoinc := "BLOB", "INTEGER PRIMARY KEY AUTOINCREMENT"
	switch driver {
	case "postgres":
		blob, autoinc = "BYTEA", "SERIAL PRIMARY KEY"
	case "mysql":
		blob, autoinc = "BLOB", "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}
	out := baseSchemaTemplate
	out = replaceAll(out, "{{BLOB}}", blob)
	out = replaceAll(out, "{{AUTOINC}}", autoinc)
	return out
}

func replaceAll(s, old, new string) string {
	for {
		i := indexOf(s, old)
		if i < 0 {
			return s
		}
		s = s[:i] + new + s[i+len(old):]
	}
}
