// Package monitor implements the in-page Monitor Agent (§4.3): a single JS
// blob injected before navigation that observes every execution-evidence
// channel named by the engine contract, plus the CDP-side reset-between-
// payloads lifecycle and the verdict-contract boolean logic.
//
// Grounded on the teacher's pkg/browser/taint_tracking.go sink-wrapping
// blob, extended with the console/DOM-mutation/network/runtime-error/
// CSP-violation channels the distilled spec adds on top of sink tracking
// alone.
package monitor

import "fmt"

// taintMarkerPrefix tags marked payloads so the monitor can recognize its own
// injected value flowing into a sink, distinguishing that from incidental
// page script matching the same literal text.
const taintMarkerPrefix = "xssentinel_taint_"

// script returns the IIFE installed via page.EvalOnNewDocument before each
// navigation. It hooks sinks, dialogs, console, DOM mutations, the
// fetch/XHR surface and CSP violation reports, and buffers everything on
// window.__xssentinelEvidence for Snapshot to read back.
func script(marker string) string {
	return fmt.Sprintf(`(function() {
    if (window.__xssentinelReady) return;
    const MARKER = %q;
    const TAINT_PREFIX = %q;

    window.__xssentinelEvidence = {
        dialogs: [],
        consoleMessages: [],
        sinkWrites: [],
        mutations: [],
        networkRequests: [],
        runtimeErrors: [],
        cspViolations: []
    };
    const ev = window.__xssentinelEvidence;

    function tainted(value) {
        return typeof value === 'string' && (value.includes(MARKER) || value.includes(TAINT_PREFIX));
    }

    function hookSetter(proto, name) {
        const desc = Object.getOwnPropertyDescriptor(proto, name);
        if (!desc || !desc.set) return;
        const origSet = desc.set;
        Object.defineProperty(proto, name, {
            set: function(value) {
                if (tainted(value)) {
                    ev.sinkWrites.push({ sink: name, marker: MARKER });
                }
                return origSet.call(this, value);
            },
            configurable: true
        });
    }
    hookSetter(Element.prototype, 'innerHTML');
    hookSetter(Element.prototype, 'outerHTML');

    function hookFn(owner, name) {
        const orig = owner[name];
        if (typeof orig !== 'function') return;
        owner[name] = function(...args) {
            for (const arg of args) {
                if (tainted(arg)) {
                    ev.sinkWrites.push({ sink: name, marker: MARKER });
                    break;
                }
            }
            return orig.apply(this, args);
        };
    }
    hookFn(document, 'write');
    hookFn(document, 'writeln');
    hookFn(window, 'eval');
    hookFn(window, 'setTimeout');
    hookFn(window, 'setInterval');
    if (location.assign) hookFn(location, 'assign');
    if (location.replace) hookFn(location, 'replace');

    window.addEventListener('beforeunload', function() {
        ev.sinkWrites.push({ sink: 'navigation', marker: MARKER });
    });

    const origAlert = window.alert, origConfirm = window.confirm, origPrompt = window.prompt;
    window.alert = function(msg) { ev.dialogs.push({ type: 'alert', message: String(msg) }); return origAlert ? origAlert.call(window, msg) : undefined; };
    window.confirm = function(msg) { ev.dialogs.push({ type: 'confirm', message: String(msg) }); return origConfirm ? origConfirm.call(window, msg) : false; };
    window.prompt = function(msg, def) { ev.dialogs.push({ type: 'prompt', message: String(msg) }); return origPrompt ? origPrompt.call(window, msg, def) : null; };

    const origConsole = {};
    ['log', 'warn', 'error', 'info'].forEach(function(level) {
        origConsole[level] = console[level];
        console[level] = function(...args) {
            const text = args.map(String).join(' ');
            ev.consoleMessages.push({ level: level, text: text });
            return origConsole[level].apply(console, args);
        };
    });

    window.addEventListener('error', function(e) {
        ev.runtimeErrors.push({ message: e.message || String(e), source: e.filename || '' });
    });

    document.addEventListener('securitypolicyviolation', function(e) {
        ev.cspViolations.push({ directive: e.violatedDirective, blockedURI: e.blockedURI });
    });

    const observer = new MutationObserver(function(records) {
        for (const record of records) {
            if (record.type === 'childList') {
                record.addedNodes.forEach(function(node) {
                    if (node.nodeType === 1 && tainted(node.outerHTML)) {
                        ev.mutations.push({ tag: node.tagName, marker: MARKER });
                    }
                });
            } else if (record.type === 'attributes') {
                const value = record.target.getAttribute ? record.target.getAttribute(record.attributeName) : null;
                if (tainted(value)) {
                    ev.mutations.push({ tag: record.target.tagName, attribute: record.attributeName, marker: MARKER });
                }
            }
        }
    });
    observer.observe(document.documentElement, { childList: true, subtree: true, attributes: true });

    const origFetch = window.fetch;
    if (origFetch) {
        window.fetch = function(input, init) {
            const url = typeof input === 'string' ? input : (input && input.url) || '';
            if (tainted(url) || (init && tainted(init.body))) {
                ev.networkRequests.push({ method: 'fetch', url: url });
            }
            return origFetch.apply(this, arguments);
        };
    }
    const origOpen = XMLHttpRequest.prototype.open;
    XMLHttpRequest.prototype.open = function(method, url, ...rest) {
        if (tainted(url)) {
            ev.networkRequests.push({ method: 'xhr', url: url });
        }
        return origOpen.call(this, method, url, ...rest);
    };

    window.__xssentinelReady = true;
})();`, marker, taintMarkerPrefix)
}

// snapshotExpression reads and clears the accumulated evidence buffer in one
// round trip, so evidence never leaks across payload iterations on a shared
// page.
const snapshotExpression = `(function() {
    const ev = window.__xssentinelEvidence || {
        dialogs: [], consoleMessages: [], sinkWrites: [], mutations: [],
        networkRequests: [], runtimeErrors: [], cspViolations: []
    };
    window.__xssentinelEvidence = {
        dialogs: [], consoleMessages: [], sinkWrites: [], mutations: [],
        networkRequests: [], runtimeErrors: [], cspViolations: []
    };
    return ev;
})()`
