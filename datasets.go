package okavango

// ChartVariant selects the bar-chart layout used for a dataset.
type ChartVariant string

const (
	// ChartGainersLosers shows the top 5 gaining countries in green and the
	// top 5 losing countries in red, with a zero reference line.
	ChartGainersLosers ChartVariant = "gainers_losers"
	// ChartTopOnly shows only the 10 countries with the highest values.
	ChartTopOnly ChartVariant = "top_only"
	// ChartTopBottom shows the top 5 and bottom 5 countries side by side.
	ChartTopBottom ChartVariant = "top_bottom"
)

// Dataset describes one downloadable statistics table: where to fetch it,
// which columns identify country and year, and how to present it.
type Dataset struct {
	Key        string       // file and lookup key, e.g. "annual_deforestation"
	Label      string       // human-readable name for UI enumeration
	URL        string       // source CSV endpoint
	CountryCol string       // raw column holding country names
	YearCol    string       // raw column holding the observation year, if any
	ValueCol   string       // normalized metric column plotted on maps/charts
	AxisLabel  string       // axis label for the metric
	Chart      ChartVariant // bar-chart layout
	Palette    string       // ColorBrewer palette name for the choropleth
	Diverging  bool         // palette is diverging (centered) rather than sequential
}

// GeodataKey is the reserved key for the country boundary archive in the
// path mapping returned by DownloadDatasets.
const GeodataKey = "geodata"

// geodataArchive is the fixed local file name for the boundary archive.
const geodataArchive = "ne_110m_admin_0_countries.zip"

// GeodataURL is the Natural Earth 110m admin-0 countries archive.
const GeodataURL = "https://naturalearth.s3.amazonaws.com/110m_cultural/ne_110m_admin_0_countries.zip"

// Datasets is the catalog of environmental statistics fetched from
// Our World in Data.
var Datasets = []Dataset{
	{
		Key:        "annual_change_forest_area",
		Label:      "Annual Change in Forest Area",
		URL:        "https://ourworldindata.org/grapher/annual-change-forest-area.csv?v=1&csvType=full&useColumnShortNames=true",
		CountryCol: "Entity",
		YearCol:    "Year",
		ValueCol:   "Net_Change_Forest_Area",
		AxisLabel:  "Net Change in Forest Area (ha)",
		Chart:      ChartGainersLosers,
		Palette:    "RdYlGn",
		Diverging:  true,
	},
	{
		Key:        "annual_deforestation",
		Label:      "Annual Deforestation",
		URL:        "https://ourworldindata.org/grapher/annual-deforestation.csv?v=1&csvType=full&useColumnShortNames=true",
		CountryCol: "Entity",
		YearCol:    "Year",
		ValueCol:   "_1D_Deforestation",
		AxisLabel:  "Deforested Area (ha)",
		Chart:      ChartTopOnly,
		Palette:    "Reds",
	},
	{
		Key:        "share_land_protected",
		Label:      "Share of Land Protected",
		URL:        "https://ourworldindata.org/grapher/terrestrial-protected-areas.csv?v=1&csvType=full&useColumnShortNames=true",
		CountryCol: "Entity",
		YearCol:    "Year",
		ValueCol:   "Er_Lnd_Ptld_Zs",
		AxisLabel:  "Protected Land (%)",
		Chart:      ChartTopBottom,
		Palette:    "Greens",
	},
	{
		Key:        "share_land_degraded",
		Label:      "Share of Land Degraded",
		URL:        "https://ourworldindata.org/grapher/forest-area-net-change-rate.csv?v=1&csvType=full&useColumnShortNames=true",
		CountryCol: "Entity",
		YearCol:    "Year",
		ValueCol:   "_15_2_1__Ag_Lnd_Frstchg",
		AxisLabel:  "Annual Forest Change Rate (%)",
		Chart:      ChartGainersLosers,
		Palette:    "RdYlGn",
		Diverging:  true,
	},
	{
		Key:        "forest_area_total",
		Label:      "Forest Area Total Share",
		URL:        "https://ourworldindata.org/grapher/forest-area-as-share-of-land-area.csv?v=1&csvType=full&useColumnShortNames=true",
		CountryCol: "Entity",
		YearCol:    "Year",
		ValueCol:   "Forest_Share",
		AxisLabel:  "Forest Area (% of land)",
		Chart:      ChartTopBottom,
		Palette:    "YlGn",
	},
}

// DatasetByKey returns the catalog entry for a key.
func DatasetByKey(key string) (Dataset, bool) {
	for _, ds := range Datasets {
		if ds.Key == key {
			return ds, true
		}
	}
	return Dataset{}, false
}

// DatasetByLabel returns the catalog entry for a human-readable label.
func DatasetByLabel(label string) (Dataset, bool) {
	for _, ds := range Datasets {
		if ds.Label == label {
			return ds, true
		}
	}
	return Dataset{}, false
}
