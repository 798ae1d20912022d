package quant

// TargetItem is one entry of the curated commodity universe the scanner
// works through. Limit is the 4-hour exchange buy limit; Priority biases
// scoring toward the staples that flip reliably.
type TargetItem struct {
	ID       int
	Name     string
	Limit    int
	Priority int
}

// TargetCommodities returns the scan universe. High-volume consumables and
// raw materials dominate; the tail holds slower but wider-margin items.
func TargetCommodities() []TargetItem {
	return []TargetItem{
		// Ammunition and runes
		{ID: 2, Name: "Cannonball", Limit: 11000, Priority: 10},
		{ID: 561, Name: "Nature rune", Limit: 18000, Priority: 10},
		{ID: 565, Name: "Blood rune", Limit: 25000, Priority: 10},
		{ID: 560, Name: "Death rune", Limit: 25000, Priority: 9},
		{ID: 566, Name: "Soul rune", Limit: 25000, Priority: 9},
		{ID: 562, Name: "Chaos rune", Limit: 35000, Priority: 8},
		{ID: 9075, Name: "Astral rune", Limit: 25000, Priority: 8},
		{ID: 21880, Name: "Wrath rune", Limit: 25000, Priority: 8},
		{ID: 554, Name: "Fire rune", Limit: 50000, Priority: 7},
		{ID: 555, Name: "Water rune", Limit: 50000, Priority: 7},
		{ID: 556, Name: "Air rune", Limit: 50000, Priority: 7},
		{ID: 557, Name: "Earth rune", Limit: 50000, Priority: 7},

		// Food
		{ID: 385, Name: "Shark", Limit: 15000, Priority: 9},
		{ID: 7946, Name: "Monkfish", Limit: 15000, Priority: 8},
		{ID: 13441, Name: "Anglerfish", Limit: 15000, Priority: 8},
		{ID: 3144, Name: "Cooked karambwan", Limit: 15000, Priority: 8},
		{ID: 11936, Name: "Dark crab", Limit: 15000, Priority: 6},

		// Potions
		{ID: 2434, Name: "Prayer potion(4)", Limit: 2000, Priority: 9},
		{ID: 3024, Name: "Super restore(4)", Limit: 2000, Priority: 9},
		{ID: 6685, Name: "Saradomin brew(4)", Limit: 2000, Priority: 8},
		{ID: 12695, Name: "Super combat potion(4)", Limit: 2000, Priority: 8},
		{ID: 12625, Name: "Stamina potion(4)", Limit: 2000, Priority: 8},
		{ID: 2444, Name: "Ranging potion(4)", Limit: 2000, Priority: 7},
		{ID: 23685, Name: "Divine super combat potion(4)", Limit: 2000, Priority: 7},

		// Ores, bars and gems
		{ID: 440, Name: "Iron ore", Limit: 30000, Priority: 8},
		{ID: 453, Name: "Coal", Limit: 30000, Priority: 8},
		{ID: 444, Name: "Gold ore", Limit: 30000, Priority: 8},
		{ID: 451, Name: "Runite ore", Limit: 4500, Priority: 7},
		{ID: 2357, Name: "Gold bar", Limit: 30000, Priority: 7},
		{ID: 2363, Name: "Runite bar", Limit: 10000, Priority: 7},
		{ID: 2361, Name: "Adamantite bar", Limit: 10000, Priority: 7},
		{ID: 1617, Name: "Uncut diamond", Limit: 10000, Priority: 6},
		{ID: 1619, Name: "Uncut ruby", Limit: 10000, Priority: 6},

		// Logs and farming
		{ID: 1513, Name: "Magic logs", Limit: 12000, Priority: 8},
		{ID: 1515, Name: "Yew logs", Limit: 25000, Priority: 8},
		{ID: 19669, Name: "Redwood logs", Limit: 12000, Priority: 6},
		{ID: 5316, Name: "Magic seed", Limit: 200, Priority: 6},
		{ID: 5315, Name: "Yew seed", Limit: 200, Priority: 6},
		{ID: 22877, Name: "Dragonfruit tree seed", Limit: 200, Priority: 5},

		// Herbs and secondaries
		{ID: 259, Name: "Grimy ranarr weed", Limit: 13000, Priority: 8},
		{ID: 265, Name: "Grimy snapdragon", Limit: 13000, Priority: 7},
		{ID: 3051, Name: "Grimy lantadyme", Limit: 13000, Priority: 6},
		{ID: 12934, Name: "Zulrah's scales", Limit: 30000, Priority: 8},
		{ID: 231, Name: "Snape grass", Limit: 13000, Priority: 6},
		{ID: 223, Name: "Red spiders' eggs", Limit: 13000, Priority: 6},

		// Ammo and gear staples
		{ID: 11212, Name: "Dragon arrow", Limit: 11000, Priority: 7},
		{ID: 9244, Name: "Dragon bolts (e)", Limit: 11000, Priority: 7},
		{ID: 811, Name: "Adamant dart", Limit: 11000, Priority: 6},
	}
}
