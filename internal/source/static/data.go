package static

import "github.com/fortuna/willow/internal/models"

// players is the hand-maintained fallback table. The figures are real
// career numbers at the time of writing; they go stale gracefully since
// every other source outranks this one.
var players = []models.Player{
	{
		Name:             "Virat Kohli",
		Team:             "India",
		Role:             models.RoleBatsman,
		BattingAvg:       53.5,
		StrikeRate:       138.2,
		RecentForm:       []int{82, 61, 45, 77, 33},
		FantasyPointsAvg: 85.3,
		Ownership:        78.4,
		Price:            10.5,
		MatchesPlayed:    115,
	},
	{
		Name:             "Rohit Sharma",
		Team:             "India",
		Role:             models.RoleBatsman,
		BattingAvg:       48.7,
		StrikeRate:       140.3,
		RecentForm:       []int{76, 45, 83, 12, 65},
		FantasyPointsAvg: 82.1,
		Ownership:        74.1,
		Price:            10.0,
		MatchesPlayed:    125,
	},
	{
		Name:             "Jasprit Bumrah",
		Team:             "India",
		Role:             models.RoleBowler,
		BowlingAvg:       20.3,
		Economy:          6.7,
		RecentWickets:    []int{3, 2, 4, 1, 3},
		FantasyPointsAvg: 78.5,
		Ownership:        65.3,
		Price:            9.5,
		MatchesPlayed:    67,
	},
	{
		Name:             "Babar Azam",
		Team:             "Pakistan",
		Role:             models.RoleBatsman,
		BattingAvg:       50.1,
		StrikeRate:       129.8,
		RecentForm:       []int{68, 45, 72, 55, 83},
		FantasyPointsAvg: 79.2,
		Ownership:        68.9,
		Price:            10.0,
		MatchesPlayed:    95,
	},
	{
		Name:             "Kane Williamson",
		Team:             "New Zealand",
		Role:             models.RoleBatsman,
		BattingAvg:       47.9,
		StrikeRate:       125.6,
		RecentForm:       []int{45, 62, 38, 71, 55},
		FantasyPointsAvg: 72.5,
		Ownership:        42.1,
		Price:            9.0,
		MatchesPlayed:    85,
	},
	{
		Name:             "Ben Stokes",
		Team:             "England",
		Role:             models.RoleAllRounder,
		BattingAvg:       42.3,
		BowlingAvg:       28.7,
		StrikeRate:       135.2,
		Economy:          8.2,
		RecentForm:       []int{55, 32, 68, 41, 72},
		RecentWickets:    []int{1, 2, 0, 3, 1},
		FantasyPointsAvg: 88.7,
		Ownership:        72.3,
		Price:            10.5,
		MatchesPlayed:    78,
	},
	{
		Name:             "Rashid Khan",
		Team:             "Afghanistan",
		Role:             models.RoleBowler,
		BowlingAvg:       17.8,
		Economy:          6.3,
		RecentWickets:    []int{4, 2, 3, 2, 3},
		FantasyPointsAvg: 76.2,
		Ownership:        58.7,
		Price:            9.0,
		MatchesPlayed:    72,
	},
	{
		Name:             "Mitchell Starc",
		Team:             "Australia",
		Role:             models.RoleBowler,
		BowlingAvg:       22.5,
		Economy:          7.2,
		RecentWickets:    []int{3, 1, 4, 2, 3},
		FantasyPointsAvg: 75.8,
		Ownership:        63.8,
		Price:            9.5,
		MatchesPlayed:    89,
	},
	{
		Name:             "Jos Buttler",
		Team:             "England",
		Role:             models.RoleWicketkeeper,
		BattingAvg:       45.2,
		StrikeRate:       149.8,
		RecentForm:       []int{73, 89, 45, 32, 67},
		FantasyPointsAvg: 81.5,
		Ownership:        61.2,
		Price:            9.5,
		MatchesPlayed:    92,
	},
	{
		Name:             "Shakib Al Hasan",
		Team:             "Bangladesh",
		Role:             models.RoleAllRounder,
		BattingAvg:       38.5,
		BowlingAvg:       24.3,
		StrikeRate:       126.7,
		Economy:          6.8,
		RecentForm:       []int{45, 38, 62, 55, 41},
		RecentWickets:    []int{2, 3, 1, 2, 2},
		FantasyPointsAvg: 85.3,
		Ownership:        45.2,
		Price:            9.0,
		MatchesPlayed:    102,
	},
}

// liveMatches is the deepest fallback for the live feed. Scores are
// frozen snapshots; the Source tag makes their origin visible to callers.
var liveMatches = []models.Match{
	{
		Teams:           "India vs England",
		Venue:           "Wankhede Stadium, Mumbai",
		MatchType:       models.FormatT20,
		Status:          models.StatusLive,
		Score:           "India 187/4 (18.2 ov), England need 52 runs from 24 balls",
		PitchConditions: models.PitchConditions{BattingFriendly: 8, PaceFriendly: 5, SpinFriendly: 4},
	},
	{
		Teams:           "Australia vs Pakistan",
		Venue:           "Melbourne Cricket Ground",
		MatchType:       models.FormatT20,
		Status:          models.StatusLive,
		Score:           "Australia 156/3 (16.0 ov), Pakistan 172/8 (20.0 ov)",
		PitchConditions: models.PitchConditions{BattingFriendly: 7, PaceFriendly: 7, SpinFriendly: 4},
	},
}

// upcomingMatches is the deepest fallback for the fixtures feed.
var upcomingMatches = []models.Match{
	{
		Teams:           "India vs Australia",
		Venue:           "Mumbai",
		MatchType:       models.FormatT20,
		Status:          models.StatusUpcoming,
		PitchConditions: models.PitchConditions{BattingFriendly: 8, PaceFriendly: 5, SpinFriendly: 4},
	},
	{
		Teams:           "England vs South Africa",
		Venue:           "Chennai",
		MatchType:       models.FormatT20,
		Status:          models.StatusUpcoming,
		PitchConditions: models.PitchConditions{BattingFriendly: 5, PaceFriendly: 3, SpinFriendly: 9},
	},
	{
		Teams:           "New Zealand vs Pakistan",
		Venue:           "Delhi",
		MatchType:       models.FormatT20,
		Status:          models.StatusUpcoming,
		PitchConditions: models.PitchConditions{BattingFriendly: 6, PaceFriendly: 7, SpinFriendly: 5},
	},
}

// VenuePitchTable maps known venues to their pitch character. The
// aggregator consults it before synthesizing conditions.
var VenuePitchTable = map[string]models.PitchConditions{
	"Mumbai":    {BattingFriendly: 8, PaceFriendly: 5, SpinFriendly: 4},
	"Chennai":   {BattingFriendly: 5, PaceFriendly: 3, SpinFriendly: 9},
	"Kolkata":   {BattingFriendly: 7, PaceFriendly: 6, SpinFriendly: 6},
	"Delhi":     {BattingFriendly: 6, PaceFriendly: 7, SpinFriendly: 5},
	"Bangalore": {BattingFriendly: 9, PaceFriendly: 4, SpinFriendly: 3},
	"Hyderabad": {BattingFriendly: 7, PaceFriendly: 5, SpinFriendly: 7},
	"Punjab":    {BattingFriendly: 8, PaceFriendly: 6, SpinFriendly: 4},
	"Rajasthan": {BattingFriendly: 6, PaceFriendly: 5, SpinFriendly: 8},
}

// TeamRosters lists well-known players per side, used when building
// recommendation pools for a fixture.
var TeamRosters = map[string][]string{
	"India":        {"Virat Kohli", "Rohit Sharma", "Jasprit Bumrah", "KL Rahul", "Hardik Pandya", "Ravindra Jadeja"},
	"Australia":    {"Steve Smith", "David Warner", "Pat Cummins", "Mitchell Starc", "Glenn Maxwell"},
	"England":      {"Joe Root", "Ben Stokes", "Jofra Archer", "Jos Buttler", "Eoin Morgan"},
	"New Zealand":  {"Kane Williamson", "Trent Boult", "Ross Taylor", "Tim Southee", "Martin Guptill"},
	"Pakistan":     {"Babar Azam", "Shaheen Afridi", "Mohammad Rizwan", "Shadab Khan", "Fakhar Zaman"},
	"South Africa": {"Quinton de Kock", "Kagiso Rabada", "Anrich Nortje", "David Miller", "Aiden Markram"},
	"West Indies":  {"Kieron Pollard", "Nicholas Pooran", "Jason Holder", "Shimron Hetmyer", "Andre Russell"},
	"Sri Lanka":    {"Wanindu Hasaranga", "Dushmantha Chameera", "Charith Asalanka", "Pathum Nissanka"},
	"Bangladesh":   {"Shakib Al Hasan", "Mushfiqur Rahim", "Mustafizur Rahman", "Mahmudullah"},
	"Afghanistan":  {"Rashid Khan", "Mohammad Nabi", "Mujeeb Ur Rahman", "Rahmanullah Gurbaz"},

	"Mumbai Indians":              {"Rohit Sharma", "Jasprit Bumrah", "Suryakumar Yadav", "Ishan Kishan", "Hardik Pandya"},
	"Chennai Super Kings":         {"MS Dhoni", "Ravindra Jadeja", "Ruturaj Gaikwad", "Deepak Chahar", "Moeen Ali"},
	"Royal Challengers Bangalore": {"Virat Kohli", "Glenn Maxwell", "Faf du Plessis", "Mohammed Siraj"},
	"Kolkata Knight Riders":       {"Shreyas Iyer", "Andre Russell", "Sunil Narine", "Venkatesh Iyer"},
	"Delhi Capitals":              {"Rishabh Pant", "Axar Patel", "Prithvi Shaw", "Anrich Nortje", "David Warner"},
	"Punjab Kings":                {"KL Rahul", "Mayank Agarwal", "Arshdeep Singh", "Kagiso Rabada"},
	"Rajasthan Royals":            {"Sanju Samson", "Jos Buttler", "Yuzvendra Chahal", "Trent Boult"},
	"Sunrisers Hyderabad":         {"Kane Williamson", "Bhuvneshwar Kumar", "T Natarajan", "Nicholas Pooran"},
}
