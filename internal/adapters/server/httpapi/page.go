package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/hylla/mergegrid/internal/adapters/server/common"
	"github.com/hylla/mergegrid/internal/config"
	"github.com/hylla/mergegrid/internal/domain"
)

// PageConfig configures the browser page.
type PageConfig struct {
	Title       string
	APIEndpoint string
}

// PageHandler serves the interactive grid page and its static assets.
type PageHandler struct {
	grid common.GridService
	cfg  PageConfig
	tmpl *template.Template
}

// pageModel is the template input for one page render.
type pageModel struct {
	Title       string
	APIEndpoint string
	Width       int
	Height      int
	Range       string
	HasSelect   bool
	Rows        [][]domain.RenderCell
}

// NewPageHandler parses the page template and binds it to a grid service.
func NewPageHandler(grid common.GridService, cfg PageConfig) (*PageHandler, error) {
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Title == "" {
		cfg.Title = "mergegrid"
	}
	cfg.APIEndpoint = "/" + strings.Trim(strings.TrimSpace(cfg.APIEndpoint), "/")
	tmpl, err := template.New("grid").Parse(pageHTML)
	if err != nil {
		return nil, err
	}
	return &PageHandler{grid: grid, cfg: cfg, tmpl: tmpl}, nil
}

// ServeHTTP routes page and asset requests.
func (p *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)
	switch r.URL.Path {
	case "/":
	case "/static/grid.js":
		writeAsset(w, "text/javascript; charset=utf-8", gridJS)
		return
	case "/static/grid.css":
		writeAsset(w, "text/css; charset=utf-8", gridCSS)
		return
	default:
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if p.grid == nil {
		http.Error(w, "grid service is not configured", http.StatusServiceUnavailable)
		return
	}

	state, err := p.grid.State(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	query := r.URL.Query()
	if query.Has("width") || query.Has("height") {
		width := config.ParseDimension(query.Get("width"), state.Width, 0)
		height := config.ParseDimension(query.Get("height"), state.Height, 0)
		if width != state.Width || height != state.Height {
			state, err = p.grid.Reset(r.Context(), common.ResetRequest{Width: width, Height: height})
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, pageModel{
		Title:       p.cfg.Title,
		APIEndpoint: p.cfg.APIEndpoint,
		Width:       state.Width,
		Height:      state.Height,
		Range:       state.Range,
		HasSelect:   state.Selection != nil,
		Rows:        state.Layout.Rows,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// writeAsset writes one embedded static asset.
func writeAsset(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(body))
}

// setSecurityHeaders applies the page's restrictive browser policy.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; base-uri 'none'; frame-ancestors 'none'")
}

const pageHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/static/grid.css" />
  </head>
  <body>
    <div class="controls">
      {{- if .HasSelect}}
      <button data-merge-button>Merge</button>
      <button data-separate-button>Separate</button>
      {{- else}}
      <button disabled data-merge-button>Merge</button>
      <button disabled data-separate-button>Separate</button>
      {{- end}}
      <span class="range" data-range>{{if .Range}}{{.Range}}{{else}}none{{end}}</span>
    </div>
    <table data-api="{{.APIEndpoint}}" data-width="{{.Width}}" data-height="{{.Height}}">
      <tbody>
        {{- range .Rows}}
        <tr>
          {{- range .}}
          <td data-selected="{{.Selected}}" data-row-index="{{.Row}}" data-col-index="{{.Col}}" data-key="{{.Key}}" colspan="{{.ColSpan}}" rowspan="{{.RowSpan}}">row: {{.Row}} col: {{.Col}}</td>
          {{- end}}
        </tr>
        {{- end}}
      </tbody>
    </table>
    <script src="/static/grid.js"></script>
  </body>
</html>
`

const gridCSS = `body { font-family: system-ui, sans-serif; margin: 2rem; }
.controls { display: flex; gap: .5rem; align-items: center; margin-bottom: 1rem; }
.range { font-family: ui-monospace, monospace; color: #555; }
table { border-collapse: collapse; user-select: none; }
td { border: 1px solid #999; padding: .5rem 1rem; text-align: center; white-space: nowrap; }
td[data-selected="true"] { background: #cde3ff; }
`

const gridJS = `(function () {
  const table = document.querySelector("table[data-api]");
  if (!table) return;
  const api = table.dataset.api;
  let dragging = false;

  function post(path, body) {
    return fetch(api + path, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: body ? JSON.stringify(body) : "",
    });
  }

  function cellOf(target) {
    const td = target.closest("td[data-row-index]");
    if (!td) return null;
    return { row: Number(td.dataset.rowIndex), col: Number(td.dataset.colIndex) };
  }

  function paint(state) {
    const sel = state.selection;
    for (const td of table.querySelectorAll("td[data-row-index]")) {
      const row = Number(td.dataset.rowIndex);
      const col = Number(td.dataset.colIndex);
      const on = !!sel && row >= sel.from.row && row <= sel.to.row && col >= sel.from.col && col <= sel.to.col;
      td.dataset.selected = String(on);
    }
    document.querySelector("[data-range]").textContent = state.range || "none";
    for (const btn of document.querySelectorAll("[data-merge-button],[data-separate-button]")) {
      btn.disabled = !sel;
    }
  }

  let pending = Promise.resolve();
  function pointer(type, cell) {
    pending = pending.then(async function () {
      const res = await post("/pointer", Object.assign({ type: type }, cell || { row: 0, col: 0 }));
      if (res.ok) paint(await res.json());
    });
  }

  table.addEventListener("mousedown", function (ev) {
    const cell = cellOf(ev.target);
    if (!cell) return;
    dragging = true;
    pointer("down", cell);
  });
  table.addEventListener("mouseover", function (ev) {
    if (!dragging) return;
    const cell = cellOf(ev.target);
    if (cell) pointer("move", cell);
  });
  document.addEventListener("mouseup", function () {
    if (!dragging) return;
    dragging = false;
    pointer("up");
  });

  async function action(path) {
    const res = await post(path);
    if (res.ok) window.location.replace(window.location.pathname);
  }
  document.querySelector("[data-merge-button]").addEventListener("click", function () { action("/merge"); });
  document.querySelector("[data-separate-button]").addEventListener("click", function () { action("/separate"); });
})();
`
