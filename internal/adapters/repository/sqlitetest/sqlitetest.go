// Package sqlitetest creates small tennis analytics databases for tests.
package sqlitetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Fixture sizes.
const (
	Competitors  = 16
	Competitions = 8
	Venues       = 6
)

const schema = `
CREATE TABLE Categories (
	category_id   TEXT PRIMARY KEY,
	category_name TEXT NOT NULL
);
CREATE TABLE Competitions (
	competition_id   TEXT PRIMARY KEY,
	competition_name TEXT NOT NULL,
	parent_id        TEXT,
	type             TEXT,
	gender           TEXT,
	category_id      TEXT REFERENCES Categories(category_id)
);
CREATE TABLE Complexes (
	complex_id   TEXT PRIMARY KEY,
	complex_name TEXT NOT NULL
);
CREATE TABLE Venues (
	venue_id     TEXT PRIMARY KEY,
	venue_name   TEXT NOT NULL,
	city_name    TEXT,
	country_name TEXT,
	country_code TEXT,
	timezone     TEXT,
	complex_id   TEXT REFERENCES Complexes(complex_id)
);
CREATE TABLE Competitors (
	competitor_id TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	country       TEXT,
	country_code  TEXT,
	abbreviation  TEXT
);
CREATE TABLE Competitor_Rankings (
	rank_id             INTEGER PRIMARY KEY AUTOINCREMENT,
	rank                INTEGER NOT NULL,
	movement            INTEGER,
	points              INTEGER,
	competitions_played INTEGER,
	competitor_id       TEXT REFERENCES Competitors(competitor_id)
);`

const seed = `
INSERT INTO Categories VALUES
	('sr:category:3', 'ATP'),
	('sr:category:6', 'WTA'),
	('sr:category:72', 'ITF'),
	('sr:category:76', 'Challenger');

INSERT INTO Competitions VALUES
	('sr:competition:2555', 'Australian Open Men Singles', NULL, 'singles', 'men', 'sr:category:3'),
	('sr:competition:2557', 'Australian Open Men Doubles', 'sr:competition:2555', 'doubles', 'men', 'sr:category:3'),
	('sr:competition:2559', 'Wimbledon Men Singles', NULL, 'singles', 'men', 'sr:category:3'),
	('sr:competition:2561', 'Wimbledon Women Singles', NULL, 'singles', 'women', 'sr:category:6'),
	('sr:competition:2563', 'Roland Garros Women Doubles', NULL, 'doubles', 'women', 'sr:category:6'),
	('sr:competition:2565', 'US Open Mixed Doubles', NULL, 'mixed', 'mixed', 'sr:category:72'),
	('sr:competition:2567', 'Challenger Lyon', NULL, 'singles', 'men', 'sr:category:76'),
	('sr:competition:2569', 'ITF 100%_Series Cup', NULL, 'singles', 'women', 'sr:category:72');

INSERT INTO Complexes VALUES
	('sr:complex:1', 'Melbourne Park'),
	('sr:complex:2', 'All England Club'),
	('sr:complex:3', 'Stade Roland Garros'),
	('sr:complex:4', 'USTA Billie Jean King National Tennis Center');

INSERT INTO Venues VALUES
	('sr:venue:1', 'Rod Laver Arena', 'Melbourne', 'Australia', 'AUS', 'Australia/Melbourne', 'sr:complex:1'),
	('sr:venue:2', 'Margaret Court Arena', 'Melbourne', 'Australia', 'AUS', 'Australia/Melbourne', 'sr:complex:1'),
	('sr:venue:3', 'Centre Court', 'London', 'United Kingdom', 'GBR', 'Europe/London', 'sr:complex:2'),
	('sr:venue:4', 'No. 1 Court', 'London', 'United Kingdom', 'GBR', 'Europe/London', 'sr:complex:2'),
	('sr:venue:5', 'Court Philippe Chatrier', 'Paris', 'France', 'FRA', 'Europe/Paris', 'sr:complex:3'),
	('sr:venue:6', 'Arthur Ashe Stadium', 'New York', 'USA', 'USA', 'America/New_York', 'sr:complex:4');

INSERT INTO Competitors VALUES
	('sr:competitor:1', 'Jannik Sinner', 'Italy', 'ITA', 'SIN'),
	('sr:competitor:2', 'Alexander Zverev', 'Germany', 'DEU', 'ZVE'),
	('sr:competitor:3', 'Carlos Alcaraz', 'Spain', 'ESP', 'ALC'),
	('sr:competitor:4', 'Taylor Fritz', 'USA', 'USA', 'FRI'),
	('sr:competitor:5', 'Daniil Medvedev', 'Russia', 'RUS', 'MED'),
	('sr:competitor:6', 'Casper Ruud', 'Norway', 'NOR', 'RUU'),
	('sr:competitor:7', 'Novak Djokovic', 'Serbia', 'SRB', 'DJO'),
	('sr:competitor:8', 'Alex de Minaur', 'Australia', 'AUS', 'DEM'),
	('sr:competitor:9', 'Andrey Rublev', 'Russia', 'RUS', 'RUB'),
	('sr:competitor:10', 'Grigor Dimitrov', 'Bulgaria', 'BGR', 'DIM'),
	('sr:competitor:11', 'Tommy Paul', 'USA', 'USA', 'PAU'),
	('sr:competitor:12', 'Stefanos Tsitsipas', 'Greece', 'GRC', 'TSI'),
	('sr:competitor:13', 'Holger Rune', 'Denmark', 'DNK', 'RUN'),
	('sr:competitor:14', 'Lorenzo Musetti', 'Italy', 'ITA', 'MUS'),
	('sr:competitor:15', 'Ben Shelton', 'USA', 'USA', 'SHE'),
	('sr:competitor:16', 'Christopher O''Connell', 'Australia', 'AUS', 'OCO');

INSERT INTO Competitor_Rankings (rank, movement, points, competitions_played, competitor_id) VALUES
	(1, 0, 11830, 19, 'sr:competitor:1'),
	(2, 1, 7915, 23, 'sr:competitor:2'),
	(3, -1, 7010, 20, 'sr:competitor:3'),
	(4, 0, 5100, 25, 'sr:competitor:4'),
	(5, 2, 5030, 24, 'sr:competitor:5'),
	(6, -1, 4210, 26, 'sr:competitor:6'),
	(7, -2, 3900, 12, 'sr:competitor:7'),
	(8, 1, 3745, 27, 'sr:competitor:8'),
	(9, 0, 3520, 28, 'sr:competitor:9'),
	(10, 3, 3200, 22, 'sr:competitor:10'),
	(11, -1, 3145, 26, 'sr:competitor:11'),
	(12, 0, 3115, 25, 'sr:competitor:12'),
	(13, 2, 2910, 24, 'sr:competitor:13'),
	(14, -3, 2600, 27, 'sr:competitor:14'),
	(15, 1, 2280, 23, 'sr:competitor:15'),
	(16, 5, 1050, 20, 'sr:competitor:16');`

// New writes a seeded database under t.TempDir and returns its path.
func New(t testing.TB) string {
	t.Helper()
	return create(t, schema+seed)
}

// NewEmpty writes a database with the schema and no rows.
func NewEmpty(t testing.TB) string {
	t.Helper()
	return create(t, schema)
}

func create(t testing.TB, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tennis_analytics.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("seed fixture database: %v", err)
	}
	return path
}
