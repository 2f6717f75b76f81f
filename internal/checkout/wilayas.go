package checkout

// Wilaya is one Algerian administrative region offered in the shipping form.
type Wilaya struct {
	Code string
	Name string
}

// Wilayas is the fixed list of the 58 wilayas, in official numbering order.
var Wilayas = []Wilaya{
	{"01", "Adrar"},
	{"02", "Chlef"},
	{"03", "Laghouat"},
	{"04", "Oum El Bouaghi"},
	{"05", "Batna"},
	{"06", "Béjaïa"},
	{"07", "Biskra"},
	{"08", "Béchar"},
	{"09", "Blida"},
	{"10", "Bouira"},
	{"11", "Tamanrasset"},
	{"12", "Tébessa"},
	{"13", "Tlemcen"},
	{"14", "Tiaret"},
	{"15", "Tizi Ouzou"},
	{"16", "Alger"},
	{"17", "Djelfa"},
	{"18", "Jijel"},
	{"19", "Sétif"},
	{"20", "Saïda"},
	{"21", "Skikda"},
	{"22", "Sidi Bel Abbès"},
	{"23", "Annaba"},
	{"24", "Guelma"},
	{"25", "Constantine"},
	{"26", "Médéa"},
	{"27", "Mostaganem"},
	{"28", "M'Sila"},
	{"29", "Mascara"},
	{"30", "Ouargla"},
	{"31", "Oran"},
	{"32", "El Bayadh"},
	{"33", "Illizi"},
	{"34", "Bordj Bou Arréridj"},
	{"35", "Boumerdès"},
	{"36", "El Tarf"},
	{"37", "Tindouf"},
	{"38", "Tissemsilt"},
	{"39", "El Oued"},
	{"40", "Khenchela"},
	{"41", "Souk Ahras"},
	{"42", "Tipaza"},
	{"43", "Mila"},
	{"44", "Aïn Defla"},
	{"45", "Naâma"},
	{"46", "Aïn Témouchent"},
	{"47", "Ghardaïa"},
	{"48", "Relizane"},
	{"49", "Timimoun"},
	{"50", "Bordj Badji Mokhtar"},
	{"51", "Ouled Djellal"},
	{"52", "Béni Abbès"},
	{"53", "In Salah"},
	{"54", "In Guezzam"},
	{"55", "Touggourt"},
	{"56", "Djanet"},
	{"57", "El M'Ghair"},
	{"58", "El Meniaa"},
}

// IsWilaya reports whether name matches one of the enumerated wilayas.
func IsWilaya(name string) bool {
	for _, w := range Wilayas {
		if w.Name == name {
			return true
		}
	}
	return false
}
