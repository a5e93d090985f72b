package inventory

import (
	"database/sql"

	"github.com/HerbHall/leasesync/internal/store"
)

// migrations returns the inventory schema migrations.
func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create inventory tables (routers, networks, clients, devices)",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE routers (
						id         TEXT PRIMARY KEY,
						name       TEXT NOT NULL,
						address    TEXT NOT NULL,
						username   TEXT NOT NULL DEFAULT '',
						secret     TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE TABLE networks (
						id             TEXT PRIMARY KEY,
						cidr           TEXT NOT NULL,
						router_id      TEXT NOT NULL REFERENCES routers(id) ON DELETE CASCADE,
						interface_name TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE INDEX idx_networks_router ON networks(router_id)`,
					`CREATE TABLE clients (
						id         TEXT PRIMARY KEY,
						name       TEXT NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE TABLE devices (
						id           TEXT PRIMARY KEY,
						mac_address  TEXT NOT NULL UNIQUE,
						ip_address   TEXT NOT NULL DEFAULT '',
						display_name TEXT NOT NULL DEFAULT '',
						client_id    TEXT REFERENCES clients(id) ON DELETE SET NULL,
						network_id   TEXT REFERENCES networks(id) ON DELETE SET NULL,
						first_seen   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						last_seen    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX idx_devices_client ON devices(client_id)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     2,
			Description: "create reconciliation audit tables (passes, pass_actions)",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE passes (
						id              TEXT PRIMARY KEY,
						mode            TEXT NOT NULL,
						started_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						ended_at        DATETIME,
						created_clients INTEGER NOT NULL DEFAULT 0,
						created_devices INTEGER NOT NULL DEFAULT 0,
						updated_devices INTEGER NOT NULL DEFAULT 0,
						skipped         INTEGER NOT NULL DEFAULT 0,
						errors          INTEGER NOT NULL DEFAULT 0,
						error_msg       TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE pass_actions (
						id            TEXT PRIMARY KEY,
						pass_id       TEXT NOT NULL REFERENCES passes(id) ON DELETE CASCADE,
						router_id     TEXT NOT NULL DEFAULT '',
						mac_address   TEXT NOT NULL DEFAULT '',
						ip_address    TEXT NOT NULL DEFAULT '',
						comment       TEXT NOT NULL DEFAULT '',
						client_action TEXT NOT NULL DEFAULT '',
						device_action TEXT NOT NULL DEFAULT '',
						network_id    TEXT NOT NULL DEFAULT '',
						error         TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE INDEX idx_pass_actions_pass ON pass_actions(pass_id)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
