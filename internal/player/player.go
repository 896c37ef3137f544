package player

// Rating is one time control's rating triple. Nil fields are absent in the source.
type Rating struct {
	Rating *int
	Games  *int
	K      *int
}

// Player is one record of the FIDE ratings list.
type Player struct {
	FideID     int64
	Name       string
	Country    *string
	Sex        *string
	Title      *string
	WomenTitle *string
	OtherTitle *string
	FOATitle   *string
	Standard   Rating
	Rapid      Rating
	Blitz      Rating
	BirthYear  *int
	Flag       *string
}

// Columns lists the players table columns in the order returned by Values.
var Columns = []string{
	"fideid",
	"name",
	"country",
	"sex",
	"title",
	"w_title",
	"o_title",
	"foa_title",
	"rating",
	"games",
	"k",
	"rapid_rating",
	"rapid_games",
	"rapid_k",
	"blitz_rating",
	"blitz_games",
	"blitz_k",
	"birthday",
	"flag",
}

// Values returns the column values in Columns order. Absent fields are nil
// pointers, which database/sql drivers bind as NULL.
func (p *Player) Values() []any {
	return []any{
		p.FideID,
		p.Name,
		p.Country,
		p.Sex,
		p.Title,
		p.WomenTitle,
		p.OtherTitle,
		p.FOATitle,
		p.Standard.Rating,
		p.Standard.Games,
		p.Standard.K,
		p.Rapid.Rating,
		p.Rapid.Games,
		p.Rapid.K,
		p.Blitz.Rating,
		p.Blitz.Games,
		p.Blitz.K,
		p.BirthYear,
		p.Flag,
	}
}

// ScanTargets returns pointers to the fields in Columns order, for use with
// sql.Row.Scan.
func (p *Player) ScanTargets() []any {
	return []any{
		&p.FideID,
		&p.Name,
		&p.Country,
		&p.Sex,
		&p.Title,
		&p.WomenTitle,
		&p.OtherTitle,
		&p.FOATitle,
		&p.Standard.Rating,
		&p.Standard.Games,
		&p.Standard.K,
		&p.Rapid.Rating,
		&p.Rapid.Games,
		&p.Rapid.K,
		&p.Blitz.Rating,
		&p.Blitz.Games,
		&p.Blitz.K,
		&p.BirthYear,
		&p.Flag,
	}
}
