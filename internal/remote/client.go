package remote

// clientHTML is the embedded web client served to remote browsers. It is a
// single self-contained page: a host/session picker plus an xterm.js
// terminal wired to the websocket protocol.
const clientHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
<title>HostDeck Remote</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@xterm/xterm@5.5.0/css/xterm.min.css">
<script src="https://cdn.jsdelivr.net/npm/@xterm/xterm@5.5.0/lib/xterm.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/@xterm/addon-fit@0.10.0/lib/addon-fit.min.js"></script>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #0f1115; color: #e4e6eb;
    height: 100vh; display: flex; flex-direction: column;
  }
  header {
    display: flex; align-items: center; gap: 12px;
    padding: 10px 14px; background: #181b22; border-bottom: 1px solid #262a33;
  }
  header h1 { font-size: 15px; font-weight: 600; }
  header h1 span { color: #4f8cff; }
  #status {
    margin-left: auto; font-size: 12px; padding: 3px 10px; border-radius: 10px;
    background: #3a2127; color: #ff7a7a;
  }
  #status.connected { background: #1d3224; color: #6fdc8c; }
  #sidebar {
    width: 260px; background: #14161c; border-right: 1px solid #262a33;
    overflow-y: auto; flex-shrink: 0;
  }
  #main { flex: 1; display: flex; min-height: 0; }
  #term { flex: 1; padding: 6px; min-width: 0; }
  .section-title {
    font-size: 11px; text-transform: uppercase; letter-spacing: 0.06em;
    color: #7a8094; padding: 12px 14px 6px;
  }
  .item {
    padding: 8px 14px; cursor: pointer; font-size: 13px;
    display: flex; align-items: center; gap: 8px;
  }
  .item:hover { background: #1d2029; }
  .item.active { background: #22304a; }
  .item .dot { width: 8px; height: 8px; border-radius: 50%; background: #555b6b; flex-shrink: 0; }
  .item .dot.online { background: #6fdc8c; }
  .item .dot.offline { background: #ff7a7a; }
  .item .meta { font-size: 11px; color: #7a8094; margin-left: auto; }
  .item .close {
    margin-left: auto; color: #7a8094; padding: 0 4px; border-radius: 4px;
  }
  .item .close:hover { color: #ff7a7a; background: #2a1d22; }
  #empty {
    flex: 1; display: flex; align-items: center; justify-content: center;
    color: #555b6b; font-size: 14px;
  }
  @media (max-width: 700px) {
    #sidebar { width: 180px; }
  }
</style>
</head>
<body>
<header>
  <h1><span>Host</span>Deck Remote</h1>
  <div id="status">Disconnected</div>
</header>
<div id="main">
  <div id="sidebar">
    <div class="section-title">Sessions</div>
    <div id="sessions"></div>
    <div class="section-title">Hosts</div>
    <div id="hosts"></div>
  </div>
  <div id="term" style="display:none"></div>
  <div id="empty">Select a session or connect to a host</div>
</div>
<script>
(function() {
  var token = new URLSearchParams(location.search).get('token') || '';
  var ws = null;
  var activeSession = null;
  var sessions = [];
  var hosts = [];
  var statuses = {};
  var pingTimer = null;

  var term = new Terminal({
    fontSize: 13,
    fontFamily: 'Menlo, Consolas, monospace',
    theme: { background: '#0f1115', foreground: '#e4e6eb' },
    cursorBlink: true
  });
  var fitAddon = new FitAddon.FitAddon();
  term.loadAddon(fitAddon);
  term.open(document.getElementById('term'));

  term.onData(function(data) {
    if (!activeSession || !ws || ws.readyState !== WebSocket.OPEN) return;
    ws.send(JSON.stringify({ type: 'input', sessionId: activeSession, data: data }));
  });

  function sendResize() {
    if (!activeSession || !ws || ws.readyState !== WebSocket.OPEN) return;
    ws.send(JSON.stringify({
      type: 'resize', sessionId: activeSession,
      rows: term.rows, cols: term.cols
    }));
  }

  window.addEventListener('resize', function() {
    if (document.getElementById('term').style.display !== 'none') {
      fitAddon.fit();
      sendResize();
    }
  });

  function setStatus(connected) {
    var el = document.getElementById('status');
    el.textContent = connected ? 'Connected' : 'Disconnected';
    el.className = connected ? 'connected' : '';
  }

  function selectSession(id) {
    activeSession = id;
    document.getElementById('empty').style.display = 'none';
    document.getElementById('term').style.display = 'block';
    term.reset();
    fitAddon.fit();
    sendResize();
    term.focus();
    renderSessions();
  }

  function renderSessions() {
    var el = document.getElementById('sessions');
    el.innerHTML = '';
    sessions.forEach(function(s) {
      var div = document.createElement('div');
      div.className = 'item' + (s.id === activeSession ? ' active' : '');
      var name = document.createElement('span');
      name.textContent = s.name || s.kind;
      div.appendChild(name);
      var close = document.createElement('span');
      close.className = 'close';
      close.textContent = '×';
      close.onclick = function(ev) {
        ev.stopPropagation();
        ws.send(JSON.stringify({ type: 'closeSession', sessionId: s.id }));
      };
      div.appendChild(close);
      div.onclick = function() { selectSession(s.id); };
      el.appendChild(div);
    });
  }

  function renderHosts() {
    var el = document.getElementById('hosts');
    el.innerHTML = '';
    hosts.forEach(function(h) {
      if (h.protocol !== 'ssh') return;
      var div = document.createElement('div');
      div.className = 'item';
      var dot = document.createElement('span');
      dot.className = 'dot ' + (statuses[h.id] || h.status || '');
      div.appendChild(dot);
      var name = document.createElement('span');
      name.textContent = h.name;
      div.appendChild(name);
      var meta = document.createElement('span');
      meta.className = 'meta';
      meta.textContent = h.group || '';
      div.appendChild(meta);
      div.onclick = function() {
        ws.send(JSON.stringify({ type: 'createSession', hostId: h.id, name: h.name }));
      };
      el.appendChild(div);
    });
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    ws = new WebSocket(proto + '//' + location.host + '/ws/session?token=' + encodeURIComponent(token));

    ws.onopen = function() {
      setStatus(true);
      ws.send(JSON.stringify({ type: 'list' }));
      pingTimer = setInterval(function() {
        if (ws.readyState === WebSocket.OPEN) {
          ws.send(JSON.stringify({ type: 'ping' }));
        }
      }, 30000);
    };

    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      switch (msg.type) {
        case 'output':
          if (msg.sessionId === activeSession) {
            term.write(atob(msg.data));
          }
          break;
        case 'hosts':
          hosts = msg.hosts || [];
          sessions = msg.sessions || [];
          renderHosts();
          renderSessions();
          break;
        case 'sessions':
          sessions = msg.sessions || [];
          if (activeSession && !sessions.some(function(s) { return s.id === activeSession; })) {
            activeSession = null;
            document.getElementById('term').style.display = 'none';
            document.getElementById('empty').style.display = 'flex';
          }
          renderSessions();
          break;
        case 'createSession':
          if (msg.success && msg.session) {
            selectSession(msg.session.id);
          }
          break;
        case 'hostStatus':
          if (msg.payload && msg.payload.hostId) {
            statuses[msg.payload.hostId] = msg.payload.status;
            renderHosts();
          }
          break;
        case 'error':
          term.write('\r\n\x1b[31m' + msg.message + '\x1b[0m\r\n');
          break;
      }
    };

    ws.onclose = function() {
      setStatus(false);
      clearInterval(pingTimer);
      setTimeout(connect, 2000);
    };
  }

  connect();
})();
</script>
</body>
</html>`
