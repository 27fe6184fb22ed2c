package tz

// countryZones maps ISO 3166-1 alpha-2 codes to one IANA zone.
//
// Countries that span several zones (US, CA, BR, AU, RU, MX, ID, KZ, ...) are
// pinned to the zone of their largest population centre. Subscribers in the
// other zones of those countries receive messages off their local send hour
// unless they carry an explicit timezone.
var countryZones = map[string]string{
	// Europe
	"NL": "Europe/Amsterdam",
	"BE": "Europe/Brussels",
	"LU": "Europe/Luxembourg",
	"DE": "Europe/Berlin",
	"FR": "Europe/Paris",
	"GB": "Europe/London",
	"UK": "Europe/London",
	"IE": "Europe/Dublin",
	"ES": "Europe/Madrid",
	"PT": "Europe/Lisbon",
	"IT": "Europe/Rome",
	"CH": "Europe/Zurich",
	"AT": "Europe/Vienna",
	"DK": "Europe/Copenhagen",
	"NO": "Europe/Oslo",
	"SE": "Europe/Stockholm",
	"FI": "Europe/Helsinki",
	"IS": "Atlantic/Reykjavik",
	"PL": "Europe/Warsaw",
	"CZ": "Europe/Prague",
	"SK": "Europe/Bratislava",
	"HU": "Europe/Budapest",
	"RO": "Europe/Bucharest",
	"BG": "Europe/Sofia",
	"GR": "Europe/Athens",
	"CY": "Asia/Nicosia",
	"MT": "Europe/Malta",
	"SI": "Europe/Ljubljana",
	"HR": "Europe/Zagreb",
	"RS": "Europe/Belgrade",
	"BA": "Europe/Sarajevo",
	"ME": "Europe/Podgorica",
	"MK": "Europe/Skopje",
	"AL": "Europe/Tirane",
	"EE": "Europe/Tallinn",
	"LV": "Europe/Riga",
	"LT": "Europe/Vilnius",
	"UA": "Europe/Kyiv",
	"BY": "Europe/Minsk",
	"MD": "Europe/Chisinau",
	"RU": "Europe/Moscow",
	"TR": "Europe/Istanbul",

	// Americas
	"US": "America/New_York",
	"CA": "America/Toronto",
	"MX": "America/Mexico_City",
	"BR": "America/Sao_Paulo",
	"AR": "America/Argentina/Buenos_Aires",
	"CL": "America/Santiago",
	"CO": "America/Bogota",
	"PE": "America/Lima",
	"VE": "America/Caracas",
	"EC": "America/Guayaquil",
	"UY": "America/Montevideo",
	"PY": "America/Asuncion",
	"BO": "America/La_Paz",
	"CR": "America/Costa_Rica",
	"PA": "America/Panama",
	"GT": "America/Guatemala",
	"DO": "America/Santo_Domingo",
	"PR": "America/Puerto_Rico",
	"JM": "America/Jamaica",
	"SR": "America/Paramaribo",
	"CW": "America/Curacao",
	"AW": "America/Aruba",

	// Asia / Middle East
	"IN": "Asia/Kolkata",
	"PK": "Asia/Karachi",
	"BD": "Asia/Dhaka",
	"LK": "Asia/Colombo",
	"NP": "Asia/Kathmandu",
	"CN": "Asia/Shanghai",
	"HK": "Asia/Hong_Kong",
	"TW": "Asia/Taipei",
	"JP": "Asia/Tokyo",
	"KR": "Asia/Seoul",
	"SG": "Asia/Singapore",
	"MY": "Asia/Kuala_Lumpur",
	"TH": "Asia/Bangkok",
	"VN": "Asia/Ho_Chi_Minh",
	"PH": "Asia/Manila",
	"ID": "Asia/Jakarta",
	"KZ": "Asia/Almaty",
	"AE": "Asia/Dubai",
	"SA": "Asia/Riyadh",
	"QA": "Asia/Qatar",
	"KW": "Asia/Kuwait",
	"BH": "Asia/Bahrain",
	"OM": "Asia/Muscat",
	"IL": "Asia/Jerusalem",
	"JO": "Asia/Amman",
	"LB": "Asia/Beirut",
	"IR": "Asia/Tehran",
	"IQ": "Asia/Baghdad",

	// Africa
	"ZA": "Africa/Johannesburg",
	"NG": "Africa/Lagos",
	"KE": "Africa/Nairobi",
	"EG": "Africa/Cairo",
	"MA": "Africa/Casablanca",
	"TN": "Africa/Tunis",
	"DZ": "Africa/Algiers",
	"GH": "Africa/Accra",
	"ET": "Africa/Addis_Ababa",
	"TZ": "Africa/Dar_es_Salaam",
	"UG": "Africa/Kampala",

	// Oceania
	"AU": "Australia/Sydney",
	"NZ": "Pacific/Auckland",
}

// prefixZones maps international dialing prefixes (without "+" or "00") to
// one IANA zone. Lookup tries 3, 2, then 1 digit prefixes.
var prefixZones = map[string]string{
	"1":   "America/New_York",
	"7":   "Europe/Moscow",
	"20":  "Africa/Cairo",
	"27":  "Africa/Johannesburg",
	"30":  "Europe/Athens",
	"31":  "Europe/Amsterdam",
	"32":  "Europe/Brussels",
	"33":  "Europe/Paris",
	"34":  "Europe/Madrid",
	"36":  "Europe/Budapest",
	"39":  "Europe/Rome",
	"40":  "Europe/Bucharest",
	"41":  "Europe/Zurich",
	"43":  "Europe/Vienna",
	"44":  "Europe/London",
	"45":  "Europe/Copenhagen",
	"46":  "Europe/Stockholm",
	"47":  "Europe/Oslo",
	"48":  "Europe/Warsaw",
	"49":  "Europe/Berlin",
	"51":  "America/Lima",
	"52":  "America/Mexico_City",
	"54":  "America/Argentina/Buenos_Aires",
	"55":  "America/Sao_Paulo",
	"56":  "America/Santiago",
	"57":  "America/Bogota",
	"58":  "America/Caracas",
	"60":  "Asia/Kuala_Lumpur",
	"61":  "Australia/Sydney",
	"62":  "Asia/Jakarta",
	"63":  "Asia/Manila",
	"64":  "Pacific/Auckland",
	"65":  "Asia/Singapore",
	"66":  "Asia/Bangkok",
	"81":  "Asia/Tokyo",
	"82":  "Asia/Seoul",
	"84":  "Asia/Ho_Chi_Minh",
	"86":  "Asia/Shanghai",
	"90":  "Europe/Istanbul",
	"91":  "Asia/Kolkata",
	"92":  "Asia/Karachi",
	"94":  "Asia/Colombo",
	"98":  "Asia/Tehran",
	"212": "Africa/Casablanca",
	"213": "Africa/Algiers",
	"216": "Africa/Tunis",
	"233": "Africa/Accra",
	"234": "Africa/Lagos",
	"251": "Africa/Addis_Ababa",
	"254": "Africa/Nairobi",
	"255": "Africa/Dar_es_Salaam",
	"256": "Africa/Kampala",
	"297": "America/Aruba",
	"351": "Europe/Lisbon",
	"352": "Europe/Luxembourg",
	"353": "Europe/Dublin",
	"354": "Atlantic/Reykjavik",
	"356": "Europe/Malta",
	"357": "Asia/Nicosia",
	"358": "Europe/Helsinki",
	"359": "Europe/Sofia",
	"370": "Europe/Vilnius",
	"371": "Europe/Riga",
	"372": "Europe/Tallinn",
	"373": "Europe/Chisinau",
	"375": "Europe/Minsk",
	"380": "Europe/Kyiv",
	"381": "Europe/Belgrade",
	"382": "Europe/Podgorica",
	"385": "Europe/Zagreb",
	"386": "Europe/Ljubljana",
	"387": "Europe/Sarajevo",
	"389": "Europe/Skopje",
	"420": "Europe/Prague",
	"421": "Europe/Bratislava",
	"506": "America/Costa_Rica",
	"507": "America/Panama",
	"591": "America/La_Paz",
	"593": "America/Guayaquil",
	"595": "America/Asuncion",
	"597": "America/Paramaribo",
	"598": "America/Montevideo",
	"599": "America/Curacao",
	"852": "Asia/Hong_Kong",
	"880": "Asia/Dhaka",
	"886": "Asia/Taipei",
	"961": "Asia/Beirut",
	"962": "Asia/Amman",
	"964": "Asia/Baghdad",
	"965": "Asia/Kuwait",
	"966": "Asia/Riyadh",
	"968": "Asia/Muscat",
	"971": "Asia/Dubai",
	"972": "Asia/Jerusalem",
	"973": "Asia/Bahrain",
	"974": "Asia/Qatar",
	"977": "Asia/Kathmandu",
}
