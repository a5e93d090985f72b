// Package inventory persists the Client, Device, Network, and Router
// records that reconciliation passes match leases against.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HerbHall/leasesync/internal/store"
	"github.com/HerbHall/leasesync/pkg/models"
	"github.com/google/uuid"
)

// Store provides database operations for the inventory.
type Store struct {
	db *sql.DB
}

// NewStore creates an inventory store and applies its migrations.
func NewStore(ctx context.Context, db *store.SQLiteStore) (*Store, error) {
	if err := db.Migrate(ctx, "inventory", migrations()); err != nil {
		return nil, fmt.Errorf("inventory migrations: %w", err)
	}
	return &Store{db: db.DB()}, nil
}

// --- routers ---

// ListRouters returns all configured routers, ordered by name.
func (s *Store) ListRouters(ctx context.Context) ([]models.Router, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, username, secret, created_at, updated_at
		FROM routers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list routers: %w", err)
	}
	defer rows.Close()

	var routers []models.Router
	for rows.Next() {
		var r models.Router
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Username, &r.Secret,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan router: %w", err)
		}
		routers = append(routers, r)
	}
	return routers, rows.Err()
}

// GetRouter returns a router by ID, or nil if not found.
func (s *Store) GetRouter(ctx context.Context, id string) (*models.Router, error) {
	var r models.Router
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, username, secret, created_at, updated_at
		FROM routers WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &r.Address, &r.Username, &r.Secret, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get router: %w", err)
	}
	return &r, nil
}

// CreateRouter inserts a new router credential record.
func (s *Store) CreateRouter(ctx context.Context, r *models.Router) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routers (id, name, address, username, secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Address, r.Username, r.Secret, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert router: %w", err)
	}
	return nil
}

// DeleteRouter removes a router and, via cascade, its networks.
func (s *Store) DeleteRouter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete router: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- networks ---

// ListNetworks returns all networks across all routers.
func (s *Store) ListNetworks(ctx context.Context) ([]models.Network, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cidr, router_id, interface_name FROM networks ORDER BY cidr`)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	var networks []models.Network
	for rows.Next() {
		var n models.Network
		if err := rows.Scan(&n.ID, &n.CIDR, &n.RouterID, &n.InterfaceName); err != nil {
			return nil, fmt.Errorf("scan network: %w", err)
		}
		networks = append(networks, n)
	}
	return networks, rows.Err()
}

// CreateNetwork inserts a new network record.
func (s *Store) CreateNetwork(ctx context.Context, n *models.Network) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO networks (id, cidr, router_id, interface_name)
		VALUES (?, ?, ?, ?)`,
		n.ID, n.CIDR, n.RouterID, n.InterfaceName,
	)
	if err != nil {
		return fmt.Errorf("insert network: %w", err)
	}
	return nil
}

// --- clients ---

// ListClients returns all clients.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateClient inserts a new client with the given display name.
func (s *Store) CreateClient(ctx context.Context, name string) (*models.Client, error) {
	c := &models.Client{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

// --- devices ---

// ListDevices returns all devices.
func (s *Store) ListDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mac_address, ip_address, display_name, client_id, network_id,
			first_seen, last_seen
		FROM devices ORDER BY mac_address`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// GetDeviceByMAC returns a device by its canonical MAC, or nil.
func (s *Store) GetDeviceByMAC(ctx context.Context, mac string) (*models.Device, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mac_address, ip_address, display_name, client_id, network_id,
			first_seen, last_seen
		FROM devices WHERE mac_address = ?`, mac)

	var d models.Device
	var clientID, networkID sql.NullString
	err := row.Scan(&d.ID, &d.MACAddress, &d.IPAddress, &d.DisplayName,
		&clientID, &networkID, &d.FirstSeen, &d.LastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	d.ClientID = clientID.String
	d.NetworkID = networkID.String
	return &d, nil
}

// CreateDevice inserts a new device. The MAC must be canonical
// (lowercase, colon-separated); a duplicate MAC fails the unique
// constraint and surfaces as a per-lease store error.
func (s *Store) CreateDevice(ctx context.Context, d *models.Device) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	d.FirstSeen = now
	d.LastSeen = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (id, mac_address, ip_address, display_name,
			client_id, network_id, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.MACAddress, d.IPAddress, d.DisplayName,
		nullable(d.ClientID), nullable(d.NetworkID), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

// DeviceUpdate carries the observed values a reconciliation pass
// overwrites on an existing device. All four fields are replaced, not
// merged.
type DeviceUpdate struct {
	ClientID    string
	IPAddress   string
	DisplayName string
	NetworkID   string
}

// UpdateDevice overwrites the device's observed fields and bumps last_seen.
func (s *Store) UpdateDevice(ctx context.Context, id string, u DeviceUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE devices SET client_id = ?, ip_address = ?, display_name = ?,
			network_id = ?, last_seen = ?
		WHERE id = ?`,
		nullable(u.ClientID), u.IPAddress, u.DisplayName, nullable(u.NetworkID),
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update device: %w", sql.ErrNoRows)
	}
	return nil
}

// --- passes ---

// CreatePass inserts a new pass record in the running state.
func (s *Store) CreatePass(ctx context.Context, p *models.Pass) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO passes (id, mode, started_at) VALUES (?, ?, ?)`,
		p.ID, string(p.Mode), p.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// FinishPass records the pass's end time and final counters.
func (s *Store) FinishPass(ctx context.Context, p *models.Pass) error {
	p.EndedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE passes SET ended_at = ?, created_clients = ?, created_devices = ?,
			updated_devices = ?, skipped = ?, errors = ?, error_msg = ?
		WHERE id = ?`,
		p.EndedAt, p.Counters.CreatedClients, p.Counters.CreatedDevices,
		p.Counters.UpdatedDevices, p.Counters.Skipped, p.Counters.Errors,
		p.ErrorMsg, p.ID,
	)
	if err != nil {
		return fmt.Errorf("finish pass: %w", err)
	}
	return nil
}

// InsertAction appends one audit record to a pass.
func (s *Store) InsertAction(ctx context.Context, passID string, a *models.ReconciliationAction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pass_actions (id, pass_id, router_id, mac_address, ip_address,
			comment, client_action, device_action, network_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), passID, a.RouterID, a.MACAddress, a.IPAddress,
		a.Comment, string(a.ClientAction), string(a.DeviceAction), a.NetworkID, a.Error,
	)
	if err != nil {
		return fmt.Errorf("insert pass action: %w", err)
	}
	return nil
}

// ListPasses returns recent passes, newest first.
func (s *Store) ListPasses(ctx context.Context, limit, offset int) ([]models.Pass, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, started_at, ended_at, created_clients, created_devices,
			updated_devices, skipped, errors, error_msg
		FROM passes ORDER BY started_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []models.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, *p)
	}
	return passes, rows.Err()
}

// GetPass returns one pass by ID, or nil if not found.
func (s *Store) GetPass(ctx context.Context, id string) (*models.Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, started_at, ended_at, created_clients, created_devices,
			updated_devices, skipped, errors, error_msg
		FROM passes WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get pass: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPass(rows)
}

// ListActions returns the audit trail of one pass in insertion order.
func (s *Store) ListActions(ctx context.Context, passID string) ([]models.ReconciliationAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT router_id, mac_address, ip_address, comment, client_action,
			device_action, network_id, error
		FROM pass_actions WHERE pass_id = ? ORDER BY rowid`, passID)
	if err != nil {
		return nil, fmt.Errorf("list pass actions: %w", err)
	}
	defer rows.Close()

	var actions []models.ReconciliationAction
	for rows.Next() {
		var a models.ReconciliationAction
		var clientAction, deviceAction string
		if err := rows.Scan(&a.RouterID, &a.MACAddress, &a.IPAddress, &a.Comment,
			&clientAction, &deviceAction, &a.NetworkID, &a.Error); err != nil {
			return nil, fmt.Errorf("scan pass action: %w", err)
		}
		a.ClientAction = models.Action(clientAction)
		a.DeviceAction = models.Action(deviceAction)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func scanDevice(rows *sql.Rows) (*models.Device, error) {
	var d models.Device
	var clientID, networkID sql.NullString
	if err := rows.Scan(&d.ID, &d.MACAddress, &d.IPAddress, &d.DisplayName,
		&clientID, &networkID, &d.FirstSeen, &d.LastSeen); err != nil {
		return nil, fmt.Errorf("scan device: %w", err)
	}
	d.ClientID = clientID.String
	d.NetworkID = networkID.String
	return &d, nil
}

func scanPass(rows *sql.Rows) (*models.Pass, error) {
	var p models.Pass
	var mode string
	var endedAt sql.NullTime
	if err := rows.Scan(&p.ID, &mode, &p.StartedAt, &endedAt,
		&p.Counters.CreatedClients, &p.Counters.CreatedDevices,
		&p.Counters.UpdatedDevices, &p.Counters.Skipped, &p.Counters.Errors,
		&p.ErrorMsg); err != nil {
		return nil, fmt.Errorf("scan pass: %w", err)
	}
	p.Mode = models.Mode(mode)
	if endedAt.Valid {
		p.EndedAt = endedAt.Time
	}
	return &p, nil
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
