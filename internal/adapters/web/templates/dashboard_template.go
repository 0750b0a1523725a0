package templates

// DashboardHTML renders the campaign heatmap page. It expects a
// DashboardPage value; the embedded state seeds the map before the
// websocket delivers updates.
const DashboardHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <style>
        :root {
            --bg: #f3f4f6;
            --panel: #ffffff;
            --text-primary: #111827;
            --text-secondary: #6b7280;
            --border: #e5e7eb;
            --radius: 8px;
        }

        html, body {
            height: 100%;
            margin: 0;
            font-family: 'Inter', -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: var(--bg);
            color: var(--text-primary);
        }

        .dashboard {
            display: flex;
            flex-direction: column;
            height: 100%;
        }

        header {
            background: #1e293b;
            color: #fff;
            padding: 16px 24px;
        }

        header h1 {
            margin: 0 0 12px;
            font-size: 22px;
            font-weight: 700;
        }

        .stats {
            display: flex;
            flex-wrap: wrap;
            gap: 12px;
        }

        .stat {
            background: rgba(255, 255, 255, 0.08);
            border-radius: var(--radius);
            padding: 8px 14px;
            min-width: 140px;
        }

        .stat .label {
            font-size: 12px;
            color: #cbd5e1;
        }

        .stat .value {
            font-size: 20px;
            font-weight: 600;
        }

        .map-wrap {
            position: relative;
            flex: 1;
        }

        #map {
            position: absolute;
            inset: 0;
        }

        .loading {
            position: absolute;
            inset: 0;
            z-index: 1000;
            display: flex;
            align-items: center;
            justify-content: center;
            background: rgba(255, 255, 255, 0.7);
            font-size: 18px;
        }

        .loading[hidden] {
            display: none;
        }

        .legend {
            position: absolute;
            right: 16px;
            bottom: 24px;
            z-index: 1000;
            background: var(--panel);
            border: 1px solid var(--border);
            border-radius: var(--radius);
            padding: 10px 14px;
            font-size: 13px;
        }

        .legend .bar {
            height: 10px;
            width: 160px;
            margin: 6px 0 4px;
            border-radius: 4px;
            background: linear-gradient(to right, {{.Legend.LowColor}}, {{.Legend.HighColor}});
        }

        .legend .ends {
            display: flex;
            justify-content: space-between;
            color: var(--text-secondary);
        }
    </style>
</head>
<body>
<div class="dashboard">
    <header>
        <h1>{{.Title}}</h1>
        <div class="stats">
            <div class="stat"><div class="label">Locations Covered</div><div class="value" id="stat-locations">{{.Header.UniqueLocations}}</div></div>
            <div class="stat"><div class="label">Total Visits</div><div class="value" id="stat-visits">{{.Header.TotalVisits}}</div></div>
            <div class="stat"><div class="label">Avg Stay</div><div class="value" id="stat-stay">{{.Header.AvgStay}}</div></div>
            <div class="stat"><div class="label">Coverage Efficiency</div><div class="value" id="stat-efficiency">{{.Header.Efficiency}}</div></div>
            <div class="stat"><div class="label">Last Update</div><div class="value" id="stat-updated">{{.Header.LastUpdate}}</div></div>
        </div>
    </header>

    <div class="map-wrap">
        <div id="map"></div>
        <div class="loading" id="loading"{{if not .Loading}} hidden{{end}}>{{.LoadingText}}</div>
        <div class="legend">
            <strong>{{.Legend.Title}}</strong>
            <div class="bar"></div>
            <div class="ends"><span>Low</span><span>High</span></div>
        </div>
    </div>
</div>

<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<script>
(function () {
    const initial = {{.State}};
    const cfg = initial.map;

    delete L.Icon.Default.prototype._getIconUrl;
    L.Icon.Default.mergeOptions(cfg.icons);

    const map = L.map('map', {
        center: cfg.center,
        zoom: cfg.zoom,
        maxBounds: cfg.maxBounds,
        maxBoundsViscosity: cfg.maxBoundsViscosity
    });
    L.tileLayer(cfg.tileUrl, { attribution: cfg.attribution }).addTo(map);

    function gradientOf(opts) {
        const g = {};
        (opts.gradient || []).forEach(function (s) { g[s.offset] = s.color; });
        return g;
    }

    let current = null;

    function removeLayer(id) {
        if (current && (!id || current.id === id)) {
            map.removeLayer(current.layer);
            current = null;
        }
    }

    function addLayer(layer) {
        removeLayer();
        const opts = layer.options;
        current = {
            id: layer.id,
            layer: L.heatLayer(layer.points, {
                radius: opts.radius,
                blur: opts.blur,
                maxZoom: opts.maxZoom,
                gradient: gradientOf(opts)
            }).addTo(map)
        };
    }

    function showHeader(h) {
        document.getElementById('stat-locations').textContent = h.unique_locations;
        document.getElementById('stat-visits').textContent = h.total_visits;
        document.getElementById('stat-stay').textContent = h.avg_stay;
        document.getElementById('stat-efficiency').textContent = h.efficiency;
        document.getElementById('stat-updated').textContent = h.last_update;
    }

    function showLoading(text) {
        const el = document.getElementById('loading');
        el.hidden = !text;
    }

    if (initial.points && initial.points.length) {
        addLayer({ id: 'initial', points: initial.points, options: initial.layer });
    }

    function connect() {
        const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(proto + location.host + '/ws');
        ws.onmessage = function (ev) {
            const msg = JSON.parse(ev.data);
            switch (msg.type) {
            case 'state':
                showHeader(msg.payload.header);
                showLoading(msg.payload.loading_text);
                break;
            case 'layer:add':
                addLayer(msg.payload);
                break;
            case 'layer:remove':
                removeLayer(msg.payload.id);
                break;
            }
        };
        ws.onclose = function () {
            setTimeout(connect, 3000);
        };
    }
    connect();
})();
</script>
</body>
</html>
`
