package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zrax/moulars/internal/model"
)

// sqlBackend implements Backend over any sqlx-supported SQL driver
// (spec.md §6.4's sqlite/postgres/mysql backends), grounded on the
// teacher's sqlx.Open + Ping + pool-tuning shape in
// node/sqldb/mysql.go. The three concrete constructors (sqlite.go,
// postgres.go, mysql.go) only
// differ in driver name, DSN handling, and schema DDL dialect.
type sqlBackend struct {
	db     *sqlx.DB
	driver string
}

func newSQLBackend(driverName, dsn string, schema string) (*sqlBackend, error) {
	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(32)
	conn.SetMaxIdleConns(8)
	conn.SetConnMaxLifetime(30 * time.Minute)

	for _, stmt := range splitStatements(schema) {
		if _, err := conn.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return &sqlBackend{db: conn, driver: driverName}, nil
}

func splitStatements(schema string) []string {
	var out []string
	start := 0
	for i := 0; i < len(schema); i++ {
		if schema[i] == ';' {
			if stmt := trimSpace(schema[start:i]); stmt != "" {
				out = append(out, stmt)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && isSpaceByte(s[i]) {
		i++
	}
	for j > i && isSpaceByte(s[j-1]) {
		j--
	}
	return s[i:j]
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\n' || b == '\t' || b == '\r' }

func (b *sqlBackend) Close() error { return b.db.Close() }

func (b *sqlBackend) rebind(q string) string { return b.db.Rebind(q) }

type accountRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	PassHash    []byte `db:"pass_hash"`
	Flags       uint32 `db:"flags"`
	BillingTier int    `db:"billing_tier"`
}

func (r accountRow) toModel() (*model.Account, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{ID: id, Name: r.Name, Flags: model.AccountFlags(r.Flags), BillingTier: r.BillingTier}
	copy(acc.PassHash[:], r.PassHash)
	return acc, nil
}

func (b *sqlBackend) AccountByName(ctx context.Context, name string) (*model.Account, error) {
	var row accountRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT id, name, pass_hash, flags, billing_tier FROM accounts WHERE lower(name) = lower(?)`), name)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.AccountByName")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (b *sqlBackend) AccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var row accountRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT id, name, pass_hash, flags, billing_tier FROM accounts WHERE id = ?`), id.String())
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.AccountByID")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (b *sqlBackend) CreateAccount(ctx context.Context, acc *model.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	_, err := b.db.ExecContext(ctx, b.rebind(
		`INSERT INTO accounts (id, name, pass_hash, flags, billing_tier) VALUES (?, ?, ?, ?, ?)`),
		acc.ID.String(), acc.Name, acc.PassHash[:], uint32(acc.Flags), acc.BillingTier)
	return mapUniqueViolation(err, "db.CreateAccount")
}

func (b *sqlBackend) APITokenLookup(ctx context.Context, token string) (*model.APIToken, error) {
	var row struct {
		AccountID string `db:"account_id"`
		Token     string `db:"token"`
		Comment   string `db:"comment"`
	}
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT account_id, token, comment FROM api_tokens WHERE token = ?`), token)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.APITokenLookup")
	}
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(row.AccountID)
	if err != nil {
		return nil, err
	}
	return &model.APIToken{AccountID: id, Token: row.Token, Comment: row.Comment}, nil
}

func (b *sqlBackend) PlayersForAccount(ctx context.Context, accountID uuid.UUID) ([]model.Player, error) {
	var rows []struct {
		PlayerIdx  uint32 `db:"player_idx"`
		PlayerName string `db:"player_name"`
		Explorer   bool   `db:"explorer"`
	}
	err := b.db.SelectContext(ctx, &rows, b.rebind(`SELECT player_idx, player_name, explorer FROM players WHERE account_id = ?`), accountID.String())
	if err != nil {
		return nil, err
	}
	out := make([]model.Player, len(rows))
	for i, r := range rows {
		out[i] = model.Player{AccountID: accountID, PlayerIdx: r.PlayerIdx, PlayerName: r.PlayerName, Explorer: r.Explorer}
	}
	return out, nil
}

func (b *sqlBackend) CreatePlayer(ctx context.Context, p *model.Player) error {
	_, err := b.db.ExecContext(ctx, b.rebind(
		`INSERT INTO players (account_id, player_idx, player_name, explorer) VALUES (?, ?, ?, ?)`),
		p.AccountID.String(), p.PlayerIdx, p.PlayerName, p.Explorer)
	return mapUniqueViolation(err, "db.CreatePlayer")
}

func (b *sqlBackend) DeletePlayer(ctx context.Context, accountID uuid.UUID, playerIdx uint32) error {
	res, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM players WHERE account_id = ? AND player_idx = ?`), accountID.String(), playerIdx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.DeletePlayer")
	}
	return nil
}

type scoreRow struct {
	ID         uint32    `db:"id"`
	OwnerIdx   uint32    `db:"owner_idx"`
	Type       int32     `db:"type"`
	Name       string    `db:"name"`
	Points     int32     `db:"points"`
	CreateTime time.Time `db:"create_time"`
}

func (b *sqlBackend) ScoreByID(ctx context.Context, id uint32) (*model.Score, error) {
	var row scoreRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT id, owner_idx, type, name, points, create_time FROM scores WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.ScoreByID")
	}
	if err != nil {
		return nil, err
	}
	return &model.Score{ID: row.ID, OwnerIdx: row.OwnerIdx, Type: row.Type, Name: row.Name, Points: row.Points, CreateTime: row.CreateTime}, nil
}

func (b *sqlBackend) ScoresForOwner(ctx context.Context, ownerIdx uint32, scoreType int32) ([]model.Score, error) {
	var rows []scoreRow
	var err error
	if scoreType < 0 {
		err = b.db.SelectContext(ctx, &rows, b.rebind(`SELECT id, owner_idx, type, name, points, create_time FROM scores WHERE owner_idx = ?`), ownerIdx)
	} else {
		err = b.db.SelectContext(ctx, &rows, b.rebind(`SELECT id, owner_idx, type, name, points, create_time FROM scores WHERE owner_idx = ? AND type = ?`), ownerIdx, scoreType)
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.Score, len(rows))
	for i, r := range rows {
		out[i] = model.Score{ID: r.ID, OwnerIdx: r.OwnerIdx, Type: r.Type, Name: r.Name, Points: r.Points, CreateTime: r.CreateTime}
	}
	return out, nil
}

func (b *sqlBackend) CreateScore(ctx context.Context, s *model.Score) (uint32, error) {
	res, err := b.db.ExecContext(ctx, b.rebind(
		`INSERT INTO scores (owner_idx, type, name, points, create_time) VALUES (?, ?, ?, ?, ?)`),
		s.OwnerIdx, s.Type, s.Name, s.Points, s.CreateTime)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

func (b *sqlBackend) DeleteScore(ctx context.Context, id uint32) error {
	res, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM scores WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.DeleteScore")
	}
	return nil
}

func (b *sqlBackend) AddScorePoints(ctx context.Context, id uint32, delta int32) error {
	res, err := b.db.ExecContext(ctx, b.rebind(`UPDATE scores SET points = points + ? WHERE id = ?`), delta, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.AddScorePoints")
	}
	return nil
}

func (b *sqlBackend) SetScorePoints(ctx context.Context, id uint32, points int32) error {
	res, err := b.db.ExecContext(ctx, b.rebind(`UPDATE scores SET points = ? WHERE id = ?`), points, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.SetScorePoints")
	}
	return nil
}

// nodeRow is the flat SQL projection of a model.Node (one row, one
// column per field slot, spec.md §3.2's fixed field layout).
type nodeRow struct {
	Idx      uint32 `db:"idx"`
	Fields   uint64 `db:"fields"`
	NodeType int32  `db:"node_type"`

	CreateTime    time.Time `db:"create_time"`
	ModifyTime    time.Time `db:"modify_time"`
	CreatorUUID   string    `db:"creator_uuid"`
	CreatorIdx    uint32    `db:"creator_idx"`
	CreateAgeName string    `db:"create_age_name"`
	CreateAgeUUID string    `db:"create_age_uuid"`

	Int32_1, Int32_2, Int32_3, Int32_4     int32
	Uint32_1, Uint32_2, Uint32_3, Uint32_4 uint32

	UUID1 string `db:"uuid_1"`
	UUID2 string `db:"uuid_2"`
	UUID3 string `db:"uuid_3"`
	UUID4 string `db:"uuid_4"`

	String1 string `db:"string_1"`
	String2 string `db:"string_2"`
	String3 string `db:"string_3"`
	String4 string `db:"string_4"`
	String5 string `db:"string_5"`
	String6 string `db:"string_6"`

	IString1 string `db:"istring_1"`
	IString2 string `db:"istring_2"`

	Text1 string `db:"text_1"`
	Text2 string `db:"text_2"`

	Blob1 []byte `db:"blob_1"`
	Blob2 []byte `db:"blob_2"`
}

func nodeToRow(n *model.Node) nodeRow {
	row := nodeRow{
		Idx: n.Idx, Fields: uint64(n.Fields), NodeType: int32(n.NodeType),
		CreateTime: n.CreateTime, ModifyTime: n.ModifyTime,
		CreatorUUID: n.CreatorUUID.String(), CreatorIdx: n.CreatorIdx,
		CreateAgeName: n.CreateAgeName, CreateAgeUUID: n.CreateAgeUUID.String(),
		Int32_1: n.Int32[0], Int32_2: n.Int32[1], Int32_3: n.Int32[2], Int32_4: n.Int32[3],
		Uint32_1: n.Uint32[0], Uint32_2: n.Uint32[1], Uint32_3: n.Uint32[2], Uint32_4: n.Uint32[3],
		UUID1: n.UUID[0].String(), UUID2: n.UUID[1].String(), UUID3: n.UUID[2].String(), UUID4: n.UUID[3].String(),
		String1: n.String[0], String2: n.String[1], String3: n.String[2],
		String4: n.String[3], String5: n.String[4], String6: n.String[5],
		IString1: n.IString[0], IString2: n.IString[1],
		Text1: n.Text[0], Text2: n.Text[1],
		Blob1: n.Blob[0], Blob2: n.Blob[1],
	}
	return row
}

func rowToNode(row *nodeRow) (*model.Node, error) {
	n := &model.Node{
		Idx: row.Idx, Fields: model.Field(row.Fields), NodeType: model.NodeType(row.NodeType),
		CreateTime: row.CreateTime, ModifyTime: row.ModifyTime, CreatorIdx: row.CreatorIdx,
		CreateAgeName: row.CreateAgeName,
	}
	var err error
	if row.CreatorUUID != "" {
		if n.CreatorUUID, err = uuid.Parse(row.CreatorUUID); err != nil {
			return nil, err
		}
	}
	if row.CreateAgeUUID != "" {
		if n.CreateAgeUUID, err = uuid.Parse(row.CreateAgeUUID); err != nil {
			return nil, err
		}
	}
	n.Int32 = [4]int32{row.Int32_1, row.Int32_2, row.Int32_3, row.Int32_4}
	n.Uint32 = [4]uint32{row.Uint32_1, row.Uint32_2, row.Uint32_3, row.Uint32_4}
	for i, s := range []string{row.UUID1, row.UUID2, row.UUID3, row.UUID4} {
		if s != "" {
			if n.UUID[i], err = uuid.Parse(s); err != nil {
				return nil, err
			}
		}
	}
	n.String = [6]string{row.String1, row.String2, row.String3, row.String4, row.String5, row.String6}
	n.IString = [2]string{row.IString1, row.IString2}
	n.Text = [2]string{row.Text1, row.Text2}
	n.Blob = [2][]byte{row.Blob1, row.Blob2}
	return n, nil
}

const nodeColumns = `idx, fields, node_type, create_time, modify_time, creator_uuid, creator_idx,
	create_age_name, create_age_uuid,
	int32_1, int32_2, int32_3, int32_4, uint32_1, uint32_2, uint32_3, uint32_4,
	uuid_1, uuid_2, uuid_3, uuid_4, string_1, string_2, string_3, string_4, string_5, string_6,
	istring_1, istring_2, text_1, text_2, blob_1, blob_2`

func (b *sqlBackend) CreateNode(ctx context.Context, n *model.Node) (uint32, error) {
	row := nodeToRow(n)
	res, err := b.db.ExecContext(ctx, b.rebind(`INSERT INTO vault_nodes (
		fields, node_type, create_time, modify_time, creator_uuid, creator_idx,
		create_age_name, create_age_uuid,
		int32_1, int32_2, int32_3, int32_4, uint32_1, uint32_2, uint32_3, uint32_4,
		uuid_1, uuid_2, uuid_3, uuid_4, string_1, string_2, string_3, string_4, string_5, string_6,
		istring_1, istring_2, text_1, text_2, blob_1, blob_2
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		row.Fields, row.NodeType, row.CreateTime, row.ModifyTime, row.CreatorUUID, row.CreatorIdx,
		row.CreateAgeName, row.CreateAgeUUID,
		row.Int32_1, row.Int32_2, row.Int32_3, row.Int32_4, row.Uint32_1, row.Uint32_2, row.Uint32_3, row.Uint32_4,
		row.UUID1, row.UUID2, row.UUID3, row.UUID4, row.String1, row.String2, row.String3, row.String4, row.String5, row.String6,
		row.IString1, row.IString2, row.Text1, row.Text2, row.Blob1, row.Blob2)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

func (b *sqlBackend) FetchNode(ctx context.Context, idx uint32) (*model.Node, error) {
	var row nodeRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT `+nodeColumns+` FROM vault_nodes WHERE idx = ?`), idx)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.FetchNode")
	}
	if err != nil {
		return nil, err
	}
	return rowToNode(&row)
}

func (b *sqlBackend) SaveNode(ctx context.Context, n *model.Node) error {
	row := nodeToRow(n)
	res, err := b.db.ExecContext(ctx, b.rebind(`UPDATE vault_nodes SET
		fields=?, node_type=?, modify_time=?, creator_uuid=?, creator_idx=?,
		create_age_name=?, create_age_uuid=?,
		int32_1=?, int32_2=?, int32_3=?, int32_4=?, uint32_1=?, uint32_2=?, uint32_3=?, uint32_4=?,
		uuid_1=?, uuid_2=?, uuid_3=?, uuid_4=?, string_1=?, string_2=?, string_3=?, string_4=?, string_5=?, string_6=?,
		istring_1=?, istring_2=?, text_1=?, text_2=?, blob_1=?, blob_2=?
		WHERE idx = ?`),
		row.Fields, row.NodeType, row.ModifyTime, row.CreatorUUID, row.CreatorIdx,
		row.CreateAgeName, row.CreateAgeUUID,
		row.Int32_1, row.Int32_2, row.Int32_3, row.Int32_4, row.Uint32_1, row.Uint32_2, row.Uint32_3, row.Uint32_4,
		row.UUID1, row.UUID2, row.UUID3, row.UUID4, row.String1, row.String2, row.String3, row.String4, row.String5, row.String6,
		row.IString1, row.IString2, row.Text1, row.Text2, row.Blob1, row.Blob2, n.Idx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.SaveNode")
	}
	return nil
}

func (b *sqlBackend) DeleteNode(ctx context.Context, idx uint32) error {
	_, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM vault_refs WHERE parent_idx = ? OR child_idx = ?`), idx, idx)
	if err != nil {
		return err
	}
	res, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM vault_nodes WHERE idx = ?`), idx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound("db.DeleteNode")
	}
	return nil
}

// FindNodes compares with the same nodeMatchesTemplate as Memory (see
// its FindNodes for which set fields are compared); building this generically as SQL would require a bitmap-aware
// query builder, so it fetches the coarse candidate set (by node_type
// when given) and finishes the comparison in Go, same as Memory.
func (b *sqlBackend) FindNodes(ctx context.Context, template *model.Node) ([]uint32, error) {
	var rows []nodeRow
	var err error
	if template.Has(model.FieldNodeType) {
		err = b.db.SelectContext(ctx, &rows, b.rebind(`SELECT `+nodeColumns+` FROM vault_nodes WHERE node_type = ?`), int32(template.NodeType))
	} else {
		err = b.db.SelectContext(ctx, &rows, `SELECT `+nodeColumns+` FROM vault_nodes`)
	}
	if err != nil {
		return nil, err
	}
	var out []uint32
	for i := range rows {
		n, err := rowToNode(&rows[i])
		if err != nil {
			return nil, err
		}
		if nodeMatchesTemplate(n, template) {
			out = append(out, n.Idx)
		}
	}
	return out, nil
}

func (b *sqlBackend) AddRef(ctx context.Context, ref NodeRef) error {
	_, err := b.db.ExecContext(ctx, b.rebind(
		`INSERT INTO vault_refs (parent_idx, child_idx, owner_idx, seen) VALUES (?, ?, ?, ?)`),
		ref.ParentIdx, ref.ChildIdx, ref.OwnerIdx, ref.Seen)
	if isUniqueViolation(err) {
		return nil // idempotent, matches Memory.AddRef
	}
	return err
}

func (b *sqlBackend) RemoveRef(ctx context.Context, parentIdx, childIdx uint32) (bool, error) {
	res, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM vault_refs WHERE parent_idx = ? AND child_idx = ?`), parentIdx, childIdx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *sqlBackend) RefsByParent(ctx context.Context, parentIdx uint32) ([]NodeRef, error) {
	var rows []NodeRef
	err := b.db.SelectContext(ctx, &rows, b.rebind(`SELECT parent_idx, child_idx, owner_idx, seen FROM vault_refs WHERE parent_idx = ?`), parentIdx)
	return rows, err
}

func (b *sqlBackend) RefsByChild(ctx context.Context, childIdx uint32) ([]NodeRef, error) {
	var rows []NodeRef
	err := b.db.SelectContext(ctx, &rows, b.rebind(`SELECT parent_idx, child_idx, owner_idx, seen FROM vault_refs WHERE child_idx = ?`), childIdx)
	return rows, err
}

func (b *sqlBackend) SDLGlobalGet(ctx context.Context, name string) (*SDLRow, error) {
	var row struct {
		Name      string    `db:"name"`
		Version   int       `db:"version"`
		Blob      []byte    `db:"blob"`
		SavedTime time.Time `db:"saved_time"`
	}
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT name, version, blob, saved_time FROM sdl_global WHERE name = ?`), name)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.SDLGlobalGet")
	}
	if err != nil {
		return nil, err
	}
	return &SDLRow{Name: row.Name, Version: row.Version, Blob: row.Blob, SavedTime: row.SavedTime}, nil
}

func (b *sqlBackend) SDLGlobalPut(ctx context.Context, row *SDLRow) error {
	_, err := b.db.ExecContext(ctx, b.rebind(upsertSQL(b.driver,
		`INSERT INTO sdl_global (name, version, blob, saved_time) VALUES (?, ?, ?, ?)`,
		"name", "version=?, blob=?, saved_time=?")),
		row.Name, row.Version, row.Blob, row.SavedTime, row.Version, row.Blob, row.SavedTime)
	return err
}

func (b *sqlBackend) SDLAgeGet(ctx context.Context, ageUUID uuid.UUID, name string) (*SDLRow, error) {
	var row struct {
		Version   int       `db:"version"`
		Blob      []byte    `db:"blob"`
		SavedTime time.Time `db:"saved_time"`
	}
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT version, blob, saved_time FROM sdl_age WHERE age_uuid = ? AND name = ?`), ageUUID.String(), name)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.SDLAgeGet")
	}
	if err != nil {
		return nil, err
	}
	return &SDLRow{Name: name, AgeUUID: ageUUID, Version: row.Version, Blob: row.Blob, SavedTime: row.SavedTime}, nil
}

func (b *sqlBackend) SDLAgePut(ctx context.Context, row *SDLRow) error {
	_, err := b.db.ExecContext(ctx, b.rebind(upsertSQL(b.driver,
		`INSERT INTO sdl_age (age_uuid, name, version, blob, saved_time) VALUES (?, ?, ?, ?, ?)`,
		"age_uuid, name", "version=?, blob=?, saved_time=?")),
		row.AgeUUID.String(), row.Name, row.Version, row.Blob, row.SavedTime, row.Version, row.Blob, row.SavedTime)
	return err
}

func (b *sqlBackend) ServerUpsert(ctx context.Context, rec *ServerRecord) error {
	_, err := b.db.ExecContext(ctx, b.rebind(upsertSQL(b.driver,
		`INSERT INTO servers (instance_uuid, age_filename, age_inst_name, sequence_num, temporary) VALUES (?, ?, ?, ?, ?)`,
		"instance_uuid", "age_filename=?, age_inst_name=?, sequence_num=?, temporary=?")),
		rec.InstanceUUID.String(), rec.AgeFilename, rec.AgeInstName, rec.SequenceNum, rec.Temporary,
		rec.AgeFilename, rec.AgeInstName, rec.SequenceNum, rec.Temporary)
	return err
}

func (b *sqlBackend) ServerDelete(ctx context.Context, instanceUUID uuid.UUID) error {
	_, err := b.db.ExecContext(ctx, b.rebind(`DELETE FROM servers WHERE instance_uuid = ?`), instanceUUID.String())
	return err
}

type serverRow struct {
	InstanceUUID string `db:"instance_uuid"`
	AgeFilename  string `db:"age_filename"`
	AgeInstName  string `db:"age_inst_name"`
	SequenceNum  uint32 `db:"sequence_num"`
	Temporary    bool   `db:"temporary"`
}

func (r serverRow) toModel() (*ServerRecord, error) {
	id, err := uuid.Parse(r.InstanceUUID)
	if err != nil {
		return nil, err
	}
	return &ServerRecord{InstanceUUID: id, AgeFilename: r.AgeFilename, AgeInstName: r.AgeInstName, SequenceNum: r.SequenceNum, Temporary: r.Temporary}, nil
}

func (b *sqlBackend) ServerByInstance(ctx context.Context, instanceUUID uuid.UUID) (*ServerRecord, error) {
	var row serverRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT instance_uuid, age_filename, age_inst_name, sequence_num, temporary FROM servers WHERE instance_uuid = ?`), instanceUUID.String())
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.ServerByInstance")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (b *sqlBackend) ServerByFilenameAndInst(ctx context.Context, ageFilename, ageInstName string) (*ServerRecord, error) {
	var row serverRow
	err := b.db.GetContext(ctx, &row, b.rebind(`SELECT instance_uuid, age_filename, age_inst_name, sequence_num, temporary FROM servers WHERE age_filename = ? AND age_inst_name = ?`), ageFilename, ageInstName)
	if err == sql.ErrNoRows {
		return nil, errNotFound("db.ServerByFilenameAndInst")
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// upsertSQL picks the dialect-appropriate "insert or update" form:
// sqlite and postgres share ON CONFLICT, while mysql uses its own
// upsert syntax.
func upsertSQL(driver, insert, conflictCols, setClause string) string {
	switch driver {
	case "postgres":
		return insert + " ON CONFLICT (" + conflictCols + ") DO UPDATE SET " + pgSetClause(setClause)
	case "mysql":
		return insert + " ON DUPLICATE KEY UPDATE " + setClause
	default: // sqlite
		return insert + " ON CONFLICT (" + conflictCols + ") DO UPDATE SET " + setClause
	}
}

// pgSetClause rewrites "col=?, col2=?" the same way for postgres; kept
// as a separate function so a future dialect quirk (e.g. EXCLUDED.col)
// has one place to live.
func pgSetClause(setClause string) string { return setClause }

func mapUniqueViolation(err error, op string) error {
	if isUniqueViolation(err) {
		return errConflict(op)
	}
	return err
}

// isUniqueViolation detects a unique-constraint failure across the
// three drivers by substring-matching their distinct error text, since
// sqlx does not normalize driver errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, "UNIQUE constraint", "Duplicate entry", "duplicate key value")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}
