package siege

var rankNames = []string{
	"Unranked",
	"Copper IV", "Copper III", "Copper II", "Copper I",
	"Bronze IV", "Bronze III", "Bronze II", "Bronze I",
	"Silver IV", "Silver III", "Silver II", "Silver I",
	"Gold IV", "Gold III", "Gold II", "Gold I",
	"Platinum III", "Platinum II", "Platinum I",
	"Diamond",
}

// RankName maps a ladder rank number to its name. Out of range numbers are Unranked.
func RankName(rank int) string {
	if rank < 0 || rank >= len(rankNames) {
		return rankNames[0]
	}
	return rankNames[rank]
}
