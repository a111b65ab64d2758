package filter

// Keyword stem tables for the compound relevance filter. Stems are matched
// as lowercase substrings, so "белгород" also covers "белгородская".
// Russian, Ukrainian, and English variants are listed together per concept.

var actionKeywords = []string{
	"удар", "ракет", "дрон", "бпла", "шахед", "атак", "обстрел",
	"прилёт", "прилет", "детонац", "порази",
	"обстріл", "приліт", "уражен", "вдари",
	"strike", "missile", "drone", "shahed", "attack", "hit",
}

var damageKeywords = []string{
	"пожар", "взрыв", "горит", "уничтож", "повреж", "разруш", "сбит",
	"ликвидир", "детонир",
	"пожеж", "вибух", "палає", "знищен", "пошкодж", "зруйнов",
	"explosion", "fire", "damage", "destroy", "burning",
}

var infrastructureKeywords = []string{
	"нпз", "нефтебаз", "нефтеперераб", "нефтехим",
	"склад боеприпас", "арсенал", "аэродром",
	"энергообъект", "подстанци", "тэц", "грэс", "электростанц",
	"военн", "воинск", "база", "казарм",
	"рлс", "радар", "пво",
	"нафтобаз", "нафтоперероб",
	"склад боєприпас", "аеродром",
	"енергооб", "підстанц", "тец", "грес", "електростанц",
	"військов", "казарм", "ппо",
	"depot", "refinery", "airfield", "airbase", "power plant", "substation",
	"military base", "ammunition", "radar", "air defense", "barracks",
	// Maritime targets.
	"танкер", "tanker", "судно", "vessel", "нефтеналивн",
	"теплоход", "сухогруз", "платформ", "platform",
	"черное море", "чорне море", "black sea",
	"каспийск", "каспійськ", "caspian",
	"азовск", "азовськ", "azov",
}

// Presence of a Russian location stem marks a message as being about
// Russian-controlled territory.
var russianLocationKeywords = []string{
	// Crimea and Sevastopol.
	"крым", "крим", "crimea",
	"севастопол", "sevastopol",
	"симферопол", "simferopol",
	"керч", "kerch",
	"джанкой", "dzhankoy",
	"феодоси", "feodosia",
	"ялт", "yalta",
	"евпатори", "євпаторі", "yevpatoria",
	"саки", "saki",
	// Oblasts.
	"амурск", "амурськ", "amur",
	"архангельск", "архангельськ", "arkhangelsk",
	"астрахан", "астраханськ", "astrakhan",
	"белгород", "бєлгородськ", "belgorod",
	"брянск", "брянськ", "bryansk",
	"челябинск", "челябінськ", "chelyabinsk",
	"иркутск", "іркутськ", "irkutsk",
	"иванов", "іванівськ", "ivanovo",
	"калининград", "калінінградськ", "kaliningrad",
	"калуж", "калузьк", "kaluga",
	"кемеров", "кемеровськ", "kemerovo",
	"кировск", "кіровськ", "kirov",
	"костром", "костромськ", "kostroma",
	"курган", "курганськ", "kurgan",
	"курск", "курськ", "kursk",
	"ленинградск", "ленінградськ", "leningrad",
	"липецк", "липецьк", "lipetsk",
	"магадан", "магаданськ", "magadan",
	"москв", "московськ", "moscow",
	"мурманск", "мурманськ", "murmansk",
	"нижегородск", "нижньогородськ", "nizhny novgorod",
	"новгородск", "новгородськ", "novgorod",
	"новосибирск", "новосибірськ", "novosibirsk",
	"омск", "омськ", "omsk",
	"оренбургск", "оренбурзьк", "orenburg",
	"орловск", "орловськ", "орёл", "орел", "oryol", "orel",
	"пензенск", "пензенськ", "пенз", "penza",
	"псковск", "псковськ", "pskov",
	"ростовск", "ростовськ", "ростов", "rostov",
	"рязанск", "рязанськ", "рязан", "ryazan",
	"сахалинск", "сахалінськ", "sakhalin",
	"самарск", "самарськ", "самар", "samara",
	"саратовск", "саратовськ", "саратов", "saratov",
	"смоленск", "смоленськ", "smolensk",
	"свердловск", "свердловськ", "sverdlovsk", "екатеринбург", "yekaterinburg",
	"тамбовск", "тамбовськ", "тамбов", "tambov",
	"томск", "томськ", "tomsk",
	"тульск", "тульськ", "тул", "tula",
	"тверск", "тверськ", "тверь", "tver",
	"тюменск", "тюменськ", "тюмень", "tyumen",
	"ульяновск", "ульянівськ", "ulyanovsk",
	"владимирск", "владимирськ", "vladimir",
	"волгоградск", "волгоградськ", "волгоград", "volgograd",
	"вологодск", "вологодськ", "вологд", "vologda",
	"воронежск", "воронезьк", "воронеж", "voronezh",
	"ярославск", "ярославськ", "ярославл", "yaroslavl",
	// Republics.
	"татарстан", "tatarstan", "казан", "kazan",
	"башкортостан", "bashkortostan", "башкир", "bashkir",
	"дагестан", "dagestan",
	"чечн", "chechnya", "грозн", "grozny",
	"ингушет", "ingushetia",
	"осети", "ossetia", "беслан",
	"кабардин", "kabardino",
	"карачаев", "karachay",
	"адыге", "adygea",
	"мордов", "mordovia",
	"удмурт", "udmurt",
	"чуваш", "chuvash",
	"мари эл", "mari el",
	// Krais.
	"краснодарск", "krasnodar",
	"ставропольск", "ставропол", "stavropol",
	"красноярск", "krasnoyarsk",
	"пермск", "perm",
	"приморск", "primorsky",
	"хабаровск", "khabarovsk",
	"алтайск", "altai",
	"забайкальск", "zabaykalsky",
	"камчатск", "kamchatka",
	// Federal cities.
	"санкт-петербург", "петербург", "st. petersburg", "saint petersburg",
	// Generic.
	"россия", "росія", "russia", "рф",
}

// Ukrainian oblast stems. Messages that name only Ukrainian targets are
// about Russian strikes on Ukraine and fall outside the collection scope.
var ukrainianTargetKeywords = []string{
	"черкас", "cherkasy",
	"чернігів", "чернигов", "chernihiv",
	"чернівц", "черновц", "chernivtsi",
	"дніпропетровськ", "днепропетровск", "дніпр", "днепр", "dnipro", "dnipropetrovsk",
	"донецьк", "донецк", "donetsk",
	"івано-франківськ", "ивано-франковск", "ivano-frankivsk",
	"харків", "харьков", "kharkiv",
	"херсон", "kherson",
	"хмельницьк", "хмельницк", "khmelnytskyi",
	"кіровоград", "кировоград", "kirovohrad",
	"київ", "киев", "kyiv", "kiev",
	"луганськ", "луганск", "luhansk",
	"львів", "львов", "lviv",
	"миколаїв", "николаев", "mykolaiv",
	"одес", "odesa", "odessa",
	"полтав", "poltava",
	"рівне", "ровно", "rivne",
	"суми", "сумы", "sumy",
	"тернопіл", "тернопол", "ternopil",
	"вінниц", "винниц", "vinnytsia",
	"волинь", "волынь", "volyn",
	"закарпатт", "закарпать", "zakarpattia",
	"запоріжж", "запорож", "zaporizhzhia",
	"житомир", "zhytomyr",
}
