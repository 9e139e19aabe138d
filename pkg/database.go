package det01

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

// ChannelCondition is the calibration of one slab + PMT channel for a run
// range.
type ChannelCondition struct {
	DetID             int     `db:"DetID"`
	LightYieldScale   float64 `db:"LightYieldScale"`
	QuantumEfficiency float64 `db:"QuantumEfficiency"`
	TimeOffset        float64 `db:"TimeOffset"`
}

// Conditions holds one ChannelCondition per detector index.
type Conditions []ChannelCondition

// DefaultConditions builds the conditions used when running without a
// database: every channel gets the configured light yield scale and quantum
// efficiency and no time offset.
func DefaultConditions(nDetectors int, config Configuration) Conditions {
	conds := make(Conditions, nDetectors)
	for i := range conds {
		conds[i] = ChannelCondition{
			DetID:             i,
			LightYieldScale:   config.LightYieldScale,
			QuantumEfficiency: config.QuantumEff,
		}
	}
	return conds
}

// Get returns the condition of detID, or a neutral one for unknown indices.
func (c Conditions) Get(detID int) ChannelCondition {
	if detID < 0 || detID >= len(c) {
		return ChannelCondition{DetID: detID, LightYieldScale: 1, QuantumEfficiency: 1}
	}
	return c[detID]
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// LoadConditions reads the channel conditions valid for runNumber. Channels
// missing from the database keep their default values.
func LoadConditions(db *sqlx.DB, runNumber int, defaults Conditions) (Conditions, error) {
	query := "SELECT DetID, LightYieldScale, QuantumEfficiency, TimeOffset FROM ChannelConditions WHERE MinRun <= %d and MaxRun >= %d ORDER BY DetID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel conditions read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	conds := make(Conditions, len(defaults))
	copy(conds, defaults)
	for rows.Next() {
		result := ChannelCondition{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		if result.DetID < 0 || result.DetID >= len(conds) {
			logger.Info(fmt.Sprintf("Ignoring conditions for unknown detector %d", result.DetID), "database")
			continue
		}
		conds[result.DetID] = result
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return conds, nil
}
