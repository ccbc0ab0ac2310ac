// Package domain models traffic accident records and the query/response
// contract between the accident map client and the /geojson backend.
//
// # Accident Records
//
// Each accident is a point feature. Coordinates are WGS-84 in GeoJSON
// [lon, lat] order. The property bag carries:
//
//	id                 source record identifier, e.g. "A-2716600"
//	severity           1 (least impact on traffic) through 4 (most)
//	start_time         local timestamp string as stored, e.g. "2019-03-05 17:41:00"
//	weather_condition  free text, e.g. "Light Rain"
//	distance_mi        length of road affected, in miles
//	description        free text
//
// Severity and distance may arrive as numbers or strings depending on the
// store; consumers compare them through their string form (see [SeverityColor]).
//
// # Query String
//
// The client addresses the backend with
//
//	/geojson?location=<place>[&severity=<1-4>][&start_date=<YYYY>-01-01][&end_date=<YYYY>-12-31]
//
// Values are encoded the way a browser's encodeURIComponent does (space as
// %20, comma as %2C). Filters whose control is unset are omitted. Years are
// not validated; whatever the control holds is sent.
//
// # Response Shapes
//
// The backend answers with one of
//
//	{"error": "..."}
//	{"geojson": {FeatureCollection}, "query_time": 0.12, "data_scanned": "...", "accident_count": 42}
//	{FeatureCollection}
//
// [DecodeResponse] resolves the shape once into a [Response] so nothing past
// the API boundary inspects raw JSON.
package domain
