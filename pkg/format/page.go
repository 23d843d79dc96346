package format

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// DefaultResourcesPath is where the page looks for the front-end assets,
// relative to the output directory.
const DefaultResourcesPath = "ordiview_required_resources"

// PageData fills the HTML page template.
type PageData struct {
	Title         string
	ResourcesPath string
	Generator     string
	Data          string // JavaScript declarations, embedded verbatim

	HasBiplots    bool
	HasEllipsoids bool
	HasVectors    bool
	HasComparison bool
}

var pageTemplate = template.Must(template.New("page").Parse(pageTmpl))

// pageView is PageData with the data block marked as trusted script.
type pageView struct {
	PageData
	Script template.JS
}

// Page renders the HTML page.
func Page(d PageData) ([]byte, error) {
	if d.ResourcesPath == "" {
		d.ResourcesPath = DefaultResourcesPath
	}
	d.ResourcesPath = strings.TrimRight(d.ResourcesPath, "/")
	if d.Title == "" {
		d.Title = "Ordiview"
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageView{PageData: d, Script: template.JS(d.Data)}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}

// DataBlock joins serialized declaration sections, skipping empty ones.
func DataBlock(sections ...string) string {
	var b strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		b.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const pageTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="generator" content="{{.Generator}}">
<title>{{.Title}}</title>
<link rel="stylesheet" type="text/css" href="{{.ResourcesPath}}/css/ordiview.css">
<link rel="stylesheet" type="text/css" href="{{.ResourcesPath}}/css/jquery-ui.css">
<script type="text/javascript" src="{{.ResourcesPath}}/js/jquery.min.js"></script>
<script type="text/javascript" src="{{.ResourcesPath}}/js/jquery-ui.min.js"></script>
<script type="text/javascript" src="{{.ResourcesPath}}/js/three.min.js"></script>
<script type="text/javascript" src="{{.ResourcesPath}}/js/trackball-controls.js"></script>
<script type="text/javascript" src="{{.ResourcesPath}}/js/d3.min.js"></script>
<script type="text/javascript" src="{{.ResourcesPath}}/js/ordiview.js"></script>
<script type="text/javascript">
{{.Script}}
</script>
</head>
<body>
<div id="overlay"><div><img src="{{.ResourcesPath}}/img/spinner.gif" alt="loading"></div></div>
<div id="plots"></div>
<div id="labels"></div>
<div id="taxalabels"></div>
<div id="axislabels"></div>
<div id="menu">
  <div id="menutabs">
    <ul>
      <li><a href="#keytab">Key</a></li>
      <li><a href="#colorby">Colors</a></li>
      <li><a href="#showby">Visibility</a></li>
      <li><a href="#scalingby">Scaling</a></li>
      <li><a href="#labelby">Labels</a></li>
      <li><a href="#axes">Axes</a></li>
{{- if .HasBiplots}}
      <li><a href="#taxatab">Taxa</a></li>
{{- end}}
{{- if .HasEllipsoids}}
      <li><a href="#ellipsoidtab">Ellipsoids</a></li>
{{- end}}
{{- if .HasVectors}}
      <li><a href="#vectorstab">Vectors</a></li>
{{- end}}
{{- if .HasComparison}}
      <li><a href="#comparisontab">Comparison</a></li>
{{- end}}
      <li><a href="#options">Options</a></li>
    </ul>
  </div>
  <div id="keytab" class="key"><form name="keyFilter"><input type="text" id="searchBox" name="searchBox" placeholder="Search"></form></div>
  <div id="colorby"><select id="colorbycombo"></select><div id="colorbylist"></div></div>
  <div id="showby"><select id="showbycombo"></select><div id="showbylist"></div></div>
  <div id="scalingby"><select id="scalingbycombo"></select><div id="scalingbylist"></div></div>
  <div id="labelby"><select id="labelcombo"></select><div id="labellist"></div></div>
  <div id="axes"><div id="axeslist"></div></div>
{{- if .HasBiplots}}
  <div id="taxatab"><input type="checkbox" id="biplotsvisibility" checked><label for="biplotsvisibility">Biplots visibility</label><div id="biplotlabels"></div></div>
{{- end}}
{{- if .HasEllipsoids}}
  <div id="ellipsoidtab"><label for="ellipsoidopacity">Ellipsoid opacity</label><div id="eopacityslider"></div></div>
{{- end}}
{{- if .HasVectors}}
  <div id="vectorstab"><label for="vectorsopacity">Vectors opacity</label><div id="vopacityslider"></div></div>
{{- end}}
{{- if .HasComparison}}
  <div id="comparisontab"><input type="checkbox" id="edgesvisibility" checked><label for="edgesvisibility">Edges visibility</label></div>
{{- end}}
  <div id="options"><button id="reset">Recenter camera</button><button id="saveas">Save as SVG</button></div>
</div>
</body>
</html>
`
