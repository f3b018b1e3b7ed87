package geocode

import "strings"

type coord struct {
	lat float64
	lng float64
}

// cityCoords holds the static fallback table: major cities per state.
// Deliberately small; it only has to beat a (0,0) sentinel when the API
// is down.
var cityCoords = map[string]map[string]coord{
	"Alabama": {
		"birmingham": {33.5186, -86.8104},
		"huntsville": {34.7304, -86.5861},
		"mobile":     {30.6954, -88.0399},
		"montgomery": {32.3668, -86.3000},
	},
	"Alaska": {
		"anchorage": {61.2181, -149.9003},
		"fairbanks": {64.8378, -147.7164},
		"juneau":    {58.3019, -134.4197},
	},
	"Arizona": {
		"flagstaff":  {35.1983, -111.6513},
		"phoenix":    {33.4484, -112.0740},
		"tucson":     {32.2226, -110.9747},
		"scottsdale": {33.4942, -111.9261},
	},
	"Arkansas": {
		"fayetteville": {36.0626, -94.1574},
		"little rock":  {34.7465, -92.2896},
	},
	"California": {
		"los angeles":   {34.0522, -118.2437},
		"sacramento":    {38.5816, -121.4944},
		"san diego":     {32.7157, -117.1611},
		"san francisco": {37.7749, -122.4194},
		"san jose":      {37.3382, -121.8863},
		"ventura":       {34.2805, -119.2945},
	},
	"Colorado": {
		"boulder":          {40.0150, -105.2705},
		"colorado springs": {38.8339, -104.8214},
		"denver":           {39.7392, -104.9903},
		"fort collins":     {40.5853, -105.0844},
		"grand junction":   {39.0639, -108.5506},
	},
	"Connecticut": {
		"bridgeport": {41.1865, -73.1952},
		"hartford":   {41.7658, -72.6734},
		"new haven":  {41.3083, -72.9279},
	},
	"Delaware": {
		"dover":      {39.1582, -75.5244},
		"wilmington": {39.7391, -75.5398},
	},
	"Florida": {
		"jacksonville": {30.3322, -81.6557},
		"miami":        {25.7617, -80.1918},
		"orlando":      {28.5383, -81.3792},
		"tampa":        {27.9506, -82.4572},
	},
	"Georgia": {
		"atlanta":  {33.7490, -84.3880},
		"savannah": {32.0809, -81.0912},
	},
	"Hawaii": {
		"honolulu": {21.3099, -157.8581},
	},
	"Idaho": {
		"boise":        {43.6150, -116.2023},
		"idaho falls":  {43.4917, -112.0339},
		"coeur dalene": {47.6777, -116.7805},
	},
	"Illinois": {
		"chicago":     {41.8781, -87.6298},
		"springfield": {39.7817, -89.6501},
	},
	"Indiana": {
		"fort wayne":   {41.0793, -85.1394},
		"indianapolis": {39.7684, -86.1581},
	},
	"Iowa": {
		"cedar rapids": {41.9779, -91.6656},
		"des moines":   {41.5868, -93.6250},
	},
	"Kansas": {
		"topeka":  {39.0473, -95.6752},
		"wichita": {37.6872, -97.3301},
	},
	"Kentucky": {
		"lexington":  {38.0406, -84.5037},
		"louisville": {38.2527, -85.7585},
	},
	"Louisiana": {
		"baton rouge": {30.4515, -91.1871},
		"new orleans": {29.9511, -90.0715},
	},
	"Maine": {
		"bangor":   {44.8016, -68.7712},
		"portland": {43.6591, -70.2568},
	},
	"Maryland": {
		"annapolis": {38.9784, -76.4922},
		"baltimore": {39.2904, -76.6122},
	},
	"Massachusetts": {
		"boston":    {42.3601, -71.0589},
		"worcester": {42.2626, -71.8023},
	},
	"Michigan": {
		"detroit":       {42.3314, -83.0458},
		"grand rapids":  {42.9634, -85.6681},
		"traverse city": {44.7631, -85.6206},
	},
	"Minnesota": {
		"duluth":      {46.7867, -92.1005},
		"minneapolis": {44.9778, -93.2650},
		"saint paul":  {44.9537, -93.0900},
	},
	"Mississippi": {
		"gulfport": {30.3674, -89.0928},
		"jackson":  {32.2988, -90.1848},
	},
	"Missouri": {
		"kansas city": {39.0997, -94.5786},
		"springfield": {37.2090, -93.2923},
		"st. louis":   {38.6270, -90.1994},
	},
	"Montana": {
		"billings": {45.7833, -108.5007},
		"bozeman":  {45.6770, -111.0429},
		"missoula": {46.8721, -113.9940},
	},
	"Nebraska": {
		"lincoln": {40.8136, -96.7026},
		"omaha":   {41.2565, -95.9345},
	},
	"Nevada": {
		"las vegas": {36.1699, -115.1398},
		"reno":      {39.5296, -119.8138},
	},
	"New Hampshire": {
		"concord":    {43.2081, -71.5376},
		"manchester": {42.9956, -71.4548},
	},
	"New Jersey": {
		"newark":  {40.7357, -74.1724},
		"trenton": {40.2171, -74.7429},
	},
	"New Mexico": {
		"albuquerque": {35.0844, -106.6504},
		"santa fe":    {35.6870, -105.9378},
		"taos":        {36.4072, -105.5731},
	},
	"New York": {
		"albany":    {42.6526, -73.7562},
		"buffalo":   {42.8864, -78.8784},
		"new york":  {40.7128, -74.0060},
		"rochester": {43.1566, -77.6088},
	},
	"North Carolina": {
		"asheville": {35.5951, -82.5515},
		"charlotte": {35.2271, -80.8431},
		"raleigh":   {35.7796, -78.6382},
	},
	"North Dakota": {
		"bismarck": {46.8083, -100.7837},
		"fargo":    {46.8772, -96.7898},
	},
	"Ohio": {
		"cincinnati": {39.1031, -84.5120},
		"cleveland":  {41.4993, -81.6944},
		"columbus":   {39.9612, -82.9988},
	},
	"Oklahoma": {
		"oklahoma city": {35.4676, -97.5164},
		"tulsa":         {36.1540, -95.9928},
	},
	"Oregon": {
		"bend":     {44.0582, -121.3153},
		"eugene":   {44.0521, -123.0868},
		"portland": {45.5152, -122.6784},
	},
	"Pennsylvania": {
		"philadelphia": {39.9526, -75.1652},
		"pittsburgh":   {40.4406, -79.9959},
	},
	"Rhode Island": {
		"providence": {41.8240, -71.4128},
	},
	"South Carolina": {
		"charleston": {32.7765, -79.9311},
		"columbia":   {34.0007, -81.0348},
		"greenville": {34.8526, -82.3940},
	},
	"South Dakota": {
		"rapid city":  {44.0805, -103.2310},
		"sioux falls": {43.5446, -96.7311},
	},
	"Tennessee": {
		"chattanooga": {35.0456, -85.3097},
		"knoxville":   {35.9606, -83.9207},
		"memphis":     {35.1495, -90.0490},
		"nashville":   {36.1627, -86.7816},
	},
	"Texas": {
		"austin":      {30.2672, -97.7431},
		"dallas":      {32.7767, -96.7970},
		"el paso":     {31.7619, -106.4850},
		"fort worth":  {32.7555, -97.3308},
		"houston":     {29.7604, -95.3698},
		"san antonio": {29.4241, -98.4936},
	},
	"Utah": {
		"moab":           {38.5733, -109.5498},
		"provo":          {40.2338, -111.6585},
		"salt lake city": {40.7608, -111.8910},
		"st. george":     {37.0965, -113.5684},
	},
	"Vermont": {
		"burlington": {44.4759, -73.2121},
		"montpelier": {44.2601, -72.5754},
	},
	"Virginia": {
		"richmond":       {37.5407, -77.4360},
		"virginia beach": {36.8529, -75.9780},
	},
	"Washington": {
		"bellingham": {48.7491, -122.4787},
		"seattle":    {47.6062, -122.3321},
		"spokane":    {47.6588, -117.4260},
		"tacoma":     {47.2529, -122.4443},
	},
	"West Virginia": {
		"charleston": {38.3498, -81.6326},
		"morgantown": {39.6295, -79.9559},
	},
	"Wisconsin": {
		"green bay": {44.5133, -88.0133},
		"madison":   {43.0731, -89.4012},
		"milwaukee": {43.0389, -87.9065},
	},
	"Wyoming": {
		"casper":   {42.8501, -106.3252},
		"cheyenne": {41.1400, -104.8202},
		"jackson":  {43.4799, -110.7624},
	},
}

// stateDefaults is the last-resort point per state, the state's largest
// or most central city.
var stateDefaults = map[string]coord{
	"Alabama":        {33.5186, -86.8104},
	"Alaska":         {61.2181, -149.9003},
	"Arizona":        {33.4484, -112.0740},
	"Arkansas":       {34.7465, -92.2896},
	"California":     {34.0522, -118.2437},
	"Colorado":       {39.7392, -104.9903},
	"Connecticut":    {41.7658, -72.6734},
	"Delaware":       {39.7391, -75.5398},
	"Florida":        {28.5383, -81.3792},
	"Georgia":        {33.7490, -84.3880},
	"Hawaii":         {21.3099, -157.8581},
	"Idaho":          {43.6150, -116.2023},
	"Illinois":       {41.8781, -87.6298},
	"Indiana":        {39.7684, -86.1581},
	"Iowa":           {41.5868, -93.6250},
	"Kansas":         {37.6872, -97.3301},
	"Kentucky":       {38.2527, -85.7585},
	"Louisiana":      {29.9511, -90.0715},
	"Maine":          {43.6591, -70.2568},
	"Maryland":       {39.2904, -76.6122},
	"Massachusetts":  {42.3601, -71.0589},
	"Michigan":       {42.3314, -83.0458},
	"Minnesota":      {44.9778, -93.2650},
	"Mississippi":    {32.2988, -90.1848},
	"Missouri":       {39.0997, -94.5786},
	"Montana":        {45.7833, -108.5007},
	"Nebraska":       {41.2565, -95.9345},
	"Nevada":         {36.1699, -115.1398},
	"New Hampshire":  {42.9956, -71.4548},
	"New Jersey":     {40.7357, -74.1724},
	"New Mexico":     {35.0844, -106.6504},
	"New York":       {40.7128, -74.0060},
	"North Carolina": {35.2271, -80.8431},
	"North Dakota":   {46.8772, -96.7898},
	"Ohio":           {39.9612, -82.9988},
	"Oklahoma":       {35.4676, -97.5164},
	"Oregon":         {45.5152, -122.6784},
	"Pennsylvania":   {39.9526, -75.1652},
	"Rhode Island":   {41.8240, -71.4128},
	"South Carolina": {32.7765, -79.9311},
	"South Dakota":   {43.5446, -96.7311},
	"Tennessee":      {36.1627, -86.7816},
	"Texas":          {30.2672, -97.7431},
	"Utah":           {40.7608, -111.8910},
	"Vermont":        {44.4759, -73.2121},
	"Virginia":       {37.5407, -77.4360},
	"Washington":     {47.6062, -122.3321},
	"West Virginia":  {38.3498, -81.6326},
	"Wisconsin":      {43.0389, -87.9065},
	"Wyoming":        {41.1400, -104.8202},
}

// CityPoint looks up the static coordinate for a city within a state.
func CityPoint(state, city string) (Point, bool) {
	cities, ok := cityCoords[canonState(state)]
	if !ok {
		return Point{}, false
	}

	c, ok := cities[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return Point{}, false
	}

	return Point{Lat: c.lat, Lng: c.lng}, true
}

// StateDefault returns the state's fallback point.
func StateDefault(state string) (Point, bool) {
	c, ok := stateDefaults[canonState(state)]
	if !ok {
		return Point{}, false
	}

	return Point{Lat: c.lat, Lng: c.lng}, true
}

func canonState(state string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return ""
	}

	lower := strings.ToLower(state)
	for name := range stateDefaults {
		if strings.ToLower(name) == lower {
			return name
		}
	}

	return state
}
