package storage

import (
	"context"

	"github.com/vibecharting/chartsafe/internal/errors"
	"github.com/vibecharting/chartsafe/internal/logging"
)

// seedStatements builds a small CRM dataset so the demo backend answers the
// same questions a production SQL Server would.
var seedStatements = []string{
	`CREATE TABLE IF NOT EXISTS "Account" (
		Name VARCHAR,
		Industry VARCHAR,
		Region VARCHAR,
		AnnualRevenue DOUBLE,
		NumberOfEmployees INTEGER,
		CreatedDate DATE,
		Email VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS "Contact" (
		FullName VARCHAR,
		Title VARCHAR,
		AccountName VARCHAR,
		Email VARCHAR,
		CreatedDate DATE
	)`,
	`CREATE TABLE IF NOT EXISTS "Lead" (
		Name VARCHAR,
		Source VARCHAR,
		Status VARCHAR,
		Score INTEGER,
		CreatedDate DATE,
		Email VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS "Opportunity" (
		Name VARCHAR,
		StageName VARCHAR,
		Amount DOUBLE,
		Probability DOUBLE,
		CloseDate DATE
	)`,
	`INSERT INTO "Account" VALUES
		('Acme Corp', 'Manufacturing', 'East', 12500000, 340, DATE '2021-03-12', 'ops@acme.example'),
		('Globex', 'Technology', 'West', 48200000, 1200, DATE '2020-07-01', 'it@globex.example'),
		('Initech', 'Technology', 'South', 8300000, 150, DATE '2022-01-20', 'info@initech.example'),
		('Umbrella Health', 'Healthcare', 'North', 23900000, 860, DATE '2019-11-05', 'contact@umbrella.example'),
		('Stark Industries', 'Manufacturing', 'East', 91000000, 4100, DATE '2018-05-30', 'sales@stark.example'),
		('Wayne Enterprises', 'Finance', 'East', 67500000, 2900, DATE '2019-02-14', 'office@wayne.example'),
		('Pied Piper', 'Technology', 'West', 2100000, 45, DATE '2023-06-18', 'team@piedpiper.example'),
		('Hooli', 'Technology', 'West', 55600000, 3800, DATE '2017-09-09', 'hr@hooli.example')`,
	`INSERT INTO "Contact" VALUES
		('Jordan Reyes', 'VP Sales', 'Acme Corp', 'jordan@acme.example', DATE '2021-04-02'),
		('Sam Okafor', 'CTO', 'Globex', 'sam@globex.example', DATE '2020-08-11'),
		('Casey Lin', 'Procurement Lead', 'Initech', 'casey@initech.example', DATE '2022-02-01'),
		('Robin Walsh', 'CFO', 'Wayne Enterprises', 'robin@wayne.example', DATE '2019-03-22')`,
	`INSERT INTO "Lead" VALUES
		('Morgan Bell', 'Webinar', 'Open', 62, DATE '2024-01-15', 'morgan@prospect.example'),
		('Alex Fontaine', 'Referral', 'Qualified', 88, DATE '2024-02-03', 'alex@prospect.example'),
		('Dana Kim', 'Cold Call', 'Open', 35, DATE '2024-02-19', 'dana@prospect.example'),
		('Riley Novak', 'Web Form', 'Disqualified', 12, DATE '2024-03-07', 'riley@prospect.example'),
		('Jules Herrera', 'Referral', 'Qualified', 91, DATE '2024-03-28', 'jules@prospect.example')`,
	`INSERT INTO "Opportunity" VALUES
		('Acme Renewal', 'Negotiation', 420000, 0.8, DATE '2024-06-30'),
		('Globex Platform Deal', 'Proposal', 1250000, 0.55, DATE '2024-08-15'),
		('Initech Pilot', 'Prospecting', 85000, 0.2, DATE '2024-09-01'),
		('Umbrella Expansion', 'Closed Won', 640000, 1.0, DATE '2024-04-12'),
		('Stark Retrofit', 'Negotiation', 2300000, 0.75, DATE '2024-07-22'),
		('Wayne Analytics', 'Closed Lost', 510000, 0.0, DATE '2024-03-31'),
		('Pied Piper Starter', 'Proposal', 30000, 0.5, DATE '2024-10-05'),
		('Hooli Migration', 'Prospecting', 1800000, 0.3, DATE '2024-11-20')`,
}

// Seed creates and populates the demo tables. Existing tables are dropped
// first so reseeding is deterministic.
func (s *DuckDBStore) Seed(ctx context.Context) error {
	for _, table := range []string{"Account", "Contact", "Lead", "Opportunity"} {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS "`+table+`"`); err != nil {
			return errors.NewDatabaseError(err, "drop demo table")
		}
	}

	for _, stmt := range seedStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.NewDatabaseError(err, "seed demo data")
		}
	}

	logging.WithField("path", s.path).Info("demo database seeded")

	return nil
}
