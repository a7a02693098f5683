// Package wms renders dataset thumbnails from an OGC Web Map Service. The
// capabilities document is read to pick a layer and style, then a single
// GetMap request fetches a PNG which is embedded as a data url.
package wms

import (
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clbanning/mxj"
	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
)

// Config holds the rendering parameters for one ingest run. A Config is a
// value; the Thumbnailer closes over it and never mutates it between calls.
type Config struct {
	// Layer and Style are preferences. When the service does not offer
	// them the first advertised layer and style are used instead.
	Layer string
	Style string

	// ZoomPadding widens the layer bounding box by this many degrees on
	// every side before clamping to the world extent.
	ZoomPadding float64

	// Extent, when set, overrides the layer bounding box entirely. Order
	// is west, east, south, north.
	Extent []float64

	// Projection is the CRS sent with the GetMap request.
	Projection string

	Timeout time.Duration
	Width   int
	Height  int

	Log mdk.Logger
}

type layerInfo struct {
	name   string
	styles []string
	// west, east, south, north
	bbox [4]float64
}

// Thumbnailer binds cfg into an mdk.Thumbnailer.
func Thumbnailer(cfg Config) mdk.Thumbnailer {
	if cfg.Projection == "" {
		cfg.Projection = "CRS:84"
	}
	if cfg.Width == 0 {
		cfg.Width = 450
	}
	if cfg.Height == 0 {
		cfg.Height = 450
	}
	if cfg.Log == nil {
		cfg.Log = mdk.NopLogger{}
	}
	client := &http.Client{Timeout: cfg.Timeout}
	return func(mapServiceURL string) (string, error) {
		return RenderThumbnail(client, cfg, mapServiceURL)
	}
}

// RenderThumbnail fetches the capabilities of the service at mapServiceURL,
// renders one GetMap image and returns it as a data:image/png;base64 url.
func RenderThumbnail(client *http.Client, cfg Config, mapServiceURL string) (string, error) {
	layers, err := fetchLayers(client, mapServiceURL)
	if err != nil {
		return "", err
	}
	if len(layers) == 0 {
		return "", errors.New("service advertises no layers")
	}

	layer := layers[0]
	for _, l := range layers {
		if l.name == cfg.Layer {
			layer = l
			break
		}
	}
	if layer.name != cfg.Layer {
		cfg.Log.Debugf("layer %q not offered, using %q", cfg.Layer, layer.name)
	}

	style := ""
	if len(layer.styles) > 0 {
		style = layer.styles[0]
		for _, s := range layer.styles {
			if s == cfg.Style {
				style = s
				break
			}
		}
	}

	extent := cfg.Extent
	if len(extent) != 4 {
		b := layer.bbox
		extent = []float64{
			b[0] - cfg.ZoomPadding,
			b[1] + cfg.ZoomPadding,
			b[2] - cfg.ZoomPadding,
			b[3] + cfg.ZoomPadding,
		}
	}
	extent = clampToWorld(extent)

	img, err := fetchMap(client, cfg, mapServiceURL, layer.name, style, extent)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}

// clampToWorld bounds an extent (west, east, south, north) to valid
// geographic coordinates.
func clampToWorld(extent []float64) []float64 {
	world := []float64{-180, 180, -90, 90}
	out := make([]float64, 4)
	for i := range out {
		out[i] = extent[i]
		if i%2 == 0 && out[i] < world[i] {
			out[i] = world[i]
		}
		if i%2 == 1 && out[i] > world[i] {
			out[i] = world[i]
		}
	}
	return out
}

func fetchLayers(client *http.Client, serviceURL string) ([]layerInfo, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service url")
	}
	q := u.Query()
	q.Set("service", "WMS")
	q.Set("version", "1.3.0")
	q.Set("request", "GetCapabilities")
	u.RawQuery = q.Encode()

	resp, err := client.Get(u.String())
	if err != nil {
		return nil, errors.Wrap(err, "fetching capabilities")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching capabilities: status %d", resp.StatusCode)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading capabilities")
	}

	caps, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, errors.Wrap(err, "decoding capabilities")
	}
	tree := map[string]interface{}(caps)
	root := mdk.Child(tree, "WMS_Capabilities")
	if root == nil {
		root = mdk.Child(tree, "WMT_MS_Capabilities")
	}
	parent := mdk.Child(mdk.Child(root, "Capability"), "Layer")
	if parent == nil {
		return nil, errors.New("capabilities carry no layer section")
	}

	var layers []layerInfo
	for _, item := range mdk.Items(mdk.Child(parent, "Layer")) {
		li := layerInfo{name: mdk.Text(mdk.Child(item, "Name"))}
		if li.name == "" {
			continue
		}
		for _, s := range mdk.Items(mdk.Child(item, "Style")) {
			if name := mdk.Text(mdk.Child(s, "Name")); name != "" {
				li.styles = append(li.styles, name)
			}
		}
		li.bbox = geographicBounds(item)
		layers = append(layers, li)
	}
	return layers, nil
}

// geographicBounds reads a layer's EX_GeographicBoundingBox, falling back
// to the whole world when it is absent or malformed.
func geographicBounds(layer interface{}) [4]float64 {
	bounds := [4]float64{-180, 180, -90, 90}
	box := mdk.Child(layer, "EX_GeographicBoundingBox")
	if box == nil {
		return bounds
	}
	for i, side := range []string{"westBoundLongitude", "eastBoundLongitude", "southBoundLatitude", "northBoundLatitude"} {
		v, err := strconv.ParseFloat(mdk.Text(mdk.Child(box, side)), 64)
		if err != nil {
			return [4]float64{-180, 180, -90, 90}
		}
		bounds[i] = v
	}
	return bounds
}

func fetchMap(client *http.Client, cfg Config, serviceURL, layer, style string, extent []float64) ([]byte, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service url")
	}
	q := u.Query()
	q.Set("service", "WMS")
	q.Set("version", "1.3.0")
	q.Set("request", "GetMap")
	q.Set("layers", layer)
	q.Set("styles", style)
	q.Set("crs", cfg.Projection)
	// CRS:84 axis order is lon,lat so bbox is west,south,east,north.
	q.Set("bbox", fmt.Sprintf("%v,%v,%v,%v", extent[0], extent[2], extent[1], extent[3]))
	q.Set("width", strconv.Itoa(cfg.Width))
	q.Set("height", strconv.Itoa(cfg.Height))
	q.Set("format", "image/png")
	q.Set("transparent", "FALSE")
	u.RawQuery = q.Encode()

	resp, err := client.Get(u.String())
	if err != nil {
		return nil, errors.Wrap(err, "fetching map")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching map: status %d", resp.StatusCode)
	}
	img, err := ioutil.ReadAll(resp.Body)
	return img, errors.Wrap(err, "reading map image")
}
