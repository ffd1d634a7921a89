package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"college-recommender/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrCollegeNotFound = errors.New("college not found")
	ErrCourseNotFound  = errors.New("course not found")
)

//go:embed schema.sql
var schema string

// collegeColumns is the column list every college-returning query selects,
// in the order scanCollege expects.
const collegeColumns = `
	c.id, c.name, c.code, c.type, COALESCE(c.university, ''), c.city, c.district,
	COALESCE(c.address, ''), COALESCE(c.pincode, ''), COALESCE(c.established_year, 0),
	COALESCE(c.website, ''), COALESCE(c.email, ''), COALESCE(c.phone, ''),
	c.naac_grade, c.naac_score, c.naac_valid_until,
	c.nba_accredited, c.nba_programs, c.nba_valid_until,
	c.aicte_approved, COALESCE(c.aicte_code, ''), c.autonomous,
	c.facilities, c.boys_hostel, c.girls_hostel, c.hostel_capacity,
	c.tuition_fee, c.development_fee, c.other_fees, c.total_annual_fee, c.hostel_fee,
	COALESCE(c.fee_category, ''),
	COALESCE(c.placement_year, 0), COALESCE(c.total_students, 0), COALESCE(c.students_placed, 0),
	c.placement_percentage, c.highest_package, c.average_package, c.median_package,
	c.top_recruiters`

const candidateColumns = collegeColumns + `,
	co.id, co.branch, co.branch_code, co.degree, co.duration, co.intake,
	COALESCE(co.affiliated_to, ''), co.accredited,
	cu.id, cu.year, cu.round, cu.exam_type, cu.category,
	cu.opening_rank, cu.closing_rank, cu.opening_percentile, cu.closing_percentile`

const cutoffColumns = `
	id, college_id, course_id, year, round, exam_type, category,
	opening_rank, closing_rank, opening_percentile, closing_percentile`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the catalog tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FindColleges loads matching colleges with their preferred-branch courses
// and the cutoffs of those courses inside the filter's window, in a single
// round trip. Colleges without a matching course are not returned.
func (s *PostgresStore) FindColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, error) {
	query, args := buildCandidateQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", models.QueryTypeRecommendationCandidates, err)
	}
	defer rows.Close()

	colleges := []models.College{}
	index := map[string]int{}
	seenCourse := map[string]bool{}

	for rows.Next() {
		var (
			college models.College
			course  models.Course
			cutoff  nullableCutoff
		)

		dest := append(collegeDest(&college),
			&course.ID, &course.Branch, &course.BranchCode, &course.Degree, &course.Duration, &course.Intake,
			&course.AffiliatedTo, &course.Accredited,
			&cutoff.ID, &cutoff.Year, &cutoff.Round, &cutoff.ExamType, &cutoff.Category,
			&cutoff.OpeningRank, &cutoff.ClosingRank, &cutoff.OpeningPercentile, &cutoff.ClosingPercentile,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}

		i, ok := index[college.ID]
		if !ok {
			i = len(colleges)
			index[college.ID] = i
			colleges = append(colleges, college)
		}
		current := &colleges[i]

		if !seenCourse[course.ID] {
			seenCourse[course.ID] = true
			course.CollegeID = current.ID
			current.Courses = append(current.Courses, course)
		}

		if cutoff.ID != nil {
			current.Cutoffs = append(current.Cutoffs, cutoff.toModel(current.ID, course.ID))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}

	return colleges, nil
}

func buildCandidateQuery(filter models.CollegeFilter) (string, []interface{}) {
	args := []interface{}{
		pq.Array(filter.Branches),
		string(filter.ExamType),
		string(filter.Category),
		filter.MinYear,
	}
	where := []string{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if len(filter.Cities) > 0 {
		add("c.city = ANY($%d)", pq.Array(filter.Cities))
	}
	if len(filter.Districts) > 0 {
		add("c.district = ANY($%d)", pq.Array(filter.Districts))
	}
	if filter.MaxAnnualFee != nil {
		add("c.total_annual_fee <= $%d", *filter.MaxAnnualFee)
	}
	if filter.HostelRequired {
		where = append(where, "(c.boys_hostel OR c.girls_hostel)")
	}
	if filter.MinPlacementPercentage != nil {
		add("c.placement_percentage >= $%d", *filter.MinPlacementPercentage)
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		add("c.type = ANY($%d)", pq.Array(types))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(candidateColumns)
	b.WriteString(`
		FROM colleges c
		JOIN courses co ON co.college_id = c.id AND co.branch = ANY($1)
		LEFT JOIN cutoffs cu ON cu.course_id = co.id AND cu.exam_type = $2 AND cu.category = $3 AND cu.year >= $4`)
	if len(where) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\t\tORDER BY c.name, c.id, co.id, cu.year DESC, cu.round")

	return b.String(), args
}

// CutoffHistory returns one pair's cutoffs from minYear on, newest first.
func (s *PostgresStore) CutoffHistory(ctx context.Context, collegeID, courseID string, exam models.ExamType, category models.Category, minYear int) ([]models.Cutoff, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+cutoffColumns+`
		FROM cutoffs
		WHERE college_id = $1 AND course_id = $2 AND exam_type = $3 AND category = $4 AND year >= $5
		ORDER BY year DESC, round`,
		collegeID, courseID, string(exam), string(category), minYear)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", models.QueryTypeCutoffHistory, err)
	}
	defer rows.Close()

	history := []models.Cutoff{}
	for rows.Next() {
		var c models.Cutoff
		if err := rows.Scan(
			&c.ID, &c.CollegeID, &c.CourseID, &c.Year, &c.Round, &c.ExamType, &c.Category,
			&c.OpeningRank, &c.ClosingRank, &c.OpeningPercentile, &c.ClosingPercentile,
		); err != nil {
			return nil, fmt.Errorf("scan cutoff: %w", err)
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

func (s *PostgresStore) CollegeIDByCode(ctx context.Context, code string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM colleges WHERE code = $1`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: code %s", ErrCollegeNotFound, code)
	}
	if err != nil {
		return "", fmt.Errorf("query %s: %w", models.QueryTypeCollegeByCode, err)
	}
	return id, nil
}

func (s *PostgresStore) CourseIDByBranchCode(ctx context.Context, collegeID, branchCode string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM courses WHERE college_id = $1 AND branch_code = $2`,
		collegeID, branchCode).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: branch %s", ErrCourseNotFound, branchCode)
	}
	if err != nil {
		return "", fmt.Errorf("query %s: %w", models.QueryTypeCourseByBranchCode, err)
	}
	return id, nil
}

// UpsertCutoff writes a cutoff keyed on (college, course, year, round, exam,
// category), replacing the ranks and percentiles of an existing row.
func (s *PostgresStore) UpsertCutoff(ctx context.Context, c models.Cutoff) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cutoffs (`+cutoffColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (college_id, course_id, year, round, exam_type, category)
		DO UPDATE SET
			opening_rank = EXCLUDED.opening_rank,
			closing_rank = EXCLUDED.closing_rank,
			opening_percentile = EXCLUDED.opening_percentile,
			closing_percentile = EXCLUDED.closing_percentile`,
		c.ID, c.CollegeID, c.CourseID, c.Year, c.Round, string(c.ExamType), string(c.Category),
		c.OpeningRank, c.ClosingRank, c.OpeningPercentile, c.ClosingPercentile)
	if err != nil {
		return fmt.Errorf("query %s: %w", models.QueryTypeUpsertCutoff, err)
	}
	return nil
}

// CollegeDocuments returns the searchable fields of every college.
func (s *PostgresStore) CollegeDocuments(ctx context.Context) ([]models.CollegeDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, code, city, district, type
		FROM colleges
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", models.QueryTypeCollegeDocuments, err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SearchColleges matches name, city or code case-insensitively. It backs
// quick search when the index is unavailable.
func (s *PostgresStore) SearchColleges(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, code, city, district, type
		FROM colleges
		WHERE name ILIKE $1 OR city ILIKE $1 OR code ILIKE $1
		ORDER BY name
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", models.QueryTypeCollegeSearch, err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]models.CollegeDocument, error) {
	docs := []models.CollegeDocument{}
	for rows.Next() {
		var d models.CollegeDocument
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.City, &d.District, &d.Type); err != nil {
			return nil, fmt.Errorf("scan college document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func collegeDest(c *models.College) []interface{} {
	return []interface{}{
		&c.ID, &c.Name, &c.Code, &c.Type, &c.University, &c.City, &c.District,
		&c.Address, &c.Pincode, &c.EstablishedYear,
		&c.Website, &c.Email, &c.Phone,
		&c.NAACGrade, &c.NAACScore, &c.NAACValidUntil,
		&c.NBAAccredited, pq.Array(&c.NBAPrograms), &c.NBAValidUntil,
		&c.AICTEApproved, &c.AICTECode, &c.Autonomous,
		pq.Array(&c.Facilities), &c.BoysHostel, &c.GirlsHostel, &c.HostelCapacity,
		&c.TuitionFee, &c.DevelopmentFee, &c.OtherFees, &c.TotalAnnualFee, &c.HostelFee,
		&c.FeeCategory,
		&c.PlacementYear, &c.TotalStudents, &c.StudentsPlaced,
		&c.PlacementPercentage, &c.HighestPackage, &c.AveragePackage, &c.MedianPackage,
		pq.Array(&c.TopRecruiters),
	}
}

// nullableCutoff receives the LEFT JOINed cutoff columns, which are all NULL
// for a course without history in the window.
type nullableCutoff struct {
	ID                *string
	Year              *int
	Round             *int
	ExamType          *string
	Category          *string
	OpeningRank       *int
	ClosingRank       *int
	OpeningPercentile *float64
	ClosingPercentile *float64
}

func (n nullableCutoff) toModel(collegeID, courseID string) models.Cutoff {
	c := models.Cutoff{
		ID:                *n.ID,
		CollegeID:         collegeID,
		CourseID:          courseID,
		OpeningRank:       n.OpeningRank,
		ClosingRank:       n.ClosingRank,
		OpeningPercentile: n.OpeningPercentile,
		ClosingPercentile: n.ClosingPercentile,
	}
	if n.Year != nil {
		c.Year = *n.Year
	}
	if n.Round != nil {
		c.Round = *n.Round
	}
	if n.ExamType != nil {
		c.ExamType = models.ExamType(*n.ExamType)
	}
	if n.Category != nil {
		c.Category = models.Category(*n.Category)
	}
	return c
}
